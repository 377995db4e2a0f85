package identity

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/suPer8Hu/linkedcraft/internal/auth"
	"github.com/suPer8Hu/linkedcraft/internal/session"
)

// Redis keeps the current session record under a key and announces every
// change on a pub/sub channel. Records hold only the access token; identity
// comes from the verified token claims.
type Redis struct {
	rdb     *redis.Client
	key     string
	channel string
	secret  string
}

var _ session.Provider = (*Redis)(nil)

type sessionRecord struct {
	AccessToken string `json:"access_token"`
}

func NewRedis(rdb *redis.Client, key, channel, secret string) *Redis {
	return &Redis{rdb: rdb, key: key, channel: channel, secret: secret}
}

func (r *Redis) FetchCurrentSession(ctx context.Context) (*session.Session, error) {
	payload, err := r.rdb.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return r.decode(payload)
}

func (r *Redis) OnSessionChange(fn func(*session.Session)) func() {
	ctx, cancel := context.WithCancel(context.Background())
	ps := r.rdb.Subscribe(ctx, r.channel)

	// Subscribe returns before the server confirms; wait so that a change
	// published right after this call is delivered.
	confirmCtx, cancelConfirm := context.WithTimeout(ctx, 5*time.Second)
	if _, err := ps.Receive(confirmCtx); err != nil {
		log.Printf("[identity] subscribe not confirmed channel=%s err=%v", r.channel, err)
	}
	cancelConfirm()

	done := make(chan struct{})

	go func() {
		defer close(done)
		ch := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				sess, err := r.decode([]byte(msg.Payload))
				if err != nil {
					log.Printf("[identity] bad session event channel=%s err=%v", r.channel, err)
					continue
				}
				fn(sess)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = ps.Close()
			<-done
		})
	}
}

// SignIn stores the token as the current session and announces it.
func (r *Redis) SignIn(ctx context.Context, accessToken string) (*session.Session, error) {
	payload, err := json.Marshal(sessionRecord{AccessToken: accessToken})
	if err != nil {
		return nil, err
	}
	sess, err := r.decode(payload)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, auth.ErrInvalidToken
	}

	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.key, payload, 0)
		p.Publish(ctx, r.channel, payload)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// SignOut removes the session record and announces the sign-out.
func (r *Redis) SignOut(ctx context.Context) error {
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, r.key)
		p.Publish(ctx, r.channel, "null")
		return nil
	})
	return err
}

// decode turns a stored or published record into a session. An empty payload,
// "null", or a token that no longer verifies means signed out.
func (r *Redis) decode(payload []byte) (*session.Session, error) {
	if len(payload) == 0 || string(payload) == "null" {
		return nil, nil
	}
	var rec sessionRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, err
	}
	if rec.AccessToken == "" {
		return nil, nil
	}

	claims, err := auth.ParseAccessToken(rec.AccessToken, r.secret)
	if err != nil {
		log.Printf("[identity] session token rejected err=%v", err)
		return nil, nil
	}

	sess := &session.Session{
		User:        session.Identity{ID: claims.Subject, Email: claims.Email},
		AccessToken: rec.AccessToken,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}
