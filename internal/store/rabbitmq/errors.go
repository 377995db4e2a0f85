package rabbitmq

import "errors"

var errMissingIDs = errors.New("event missing request_id or user_id")
