package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/linkedcraft/internal/config"
	"github.com/suPer8Hu/linkedcraft/internal/db"
	"github.com/suPer8Hu/linkedcraft/internal/history"
	"github.com/suPer8Hu/linkedcraft/internal/store/rabbitmq"
)

func main() {
	cfg := config.Load()
	if cfg.RabbitURL == "" {
		log.Fatalf("RABBIT_URL is required")
	}

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	repo := history.NewRepo(gdb)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	if err := rabbitmq.DeclareTopology(ch, cfg.RabbitQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	concurrency := cfg.WorkerConcurrency

	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				ev, err := rabbitmq.DecodeEvent(d.Body)
				if err != nil {
					log.Printf("worker=%d bad message: %v", workerID, err)
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				if err := handleEvent(ctx, repo, ev); err != nil {
					log.Printf("worker=%d event %s failed cost=%s err=%v", workerID, ev.RequestID, time.Since(start), err)
					_ = d.Nack(false, false)
					continue
				}

				if err := d.Ack(false); err != nil {
					log.Printf("worker=%d ack failed event=%s err=%v", workerID, ev.RequestID, err)
				}
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			log.Printf("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				close(jobs)
				wg.Wait()
				return
			}
			jobs <- d
		}
	}
}

// eventTimeout bounds one archive write, including writes drained after shutdown.
const eventTimeout = 10 * time.Second

func handleEvent(ctx context.Context, repo *history.Repo, ev history.Event) error {
	// a delivery already taken off the queue is finished even once ctx is cancelled
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventTimeout)
	defer cancel()

	start := time.Now()
	if err := repo.Archive(ctx, ev); err != nil {
		return err
	}
	if cost := time.Since(start); cost > 500*time.Millisecond {
		log.Printf("event_timing event=%s user=%s state=%s total=%s", ev.RequestID, ev.UserID, ev.State, cost)
	}
	return nil
}
