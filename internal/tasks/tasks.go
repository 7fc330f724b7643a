// Package tasks dispatches background work over NATS. Dispatch is
// fire-and-forget: the caller gets no completion signal and there is no
// cancellation once a task is published.
package tasks

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Task subjects
const (
	SubjectFileThumbnail  = "folderr.tasks.file.thumbnail"
	SubjectVideoThumbnail = "folderr.tasks.video.thumbnail"
	SubjectTransferEmail  = "folderr.tasks.email.transfer"
	SubjectShareEmail     = "folderr.tasks.email.share"
)

type FileThumbnailTask struct {
	FileID string `json:"file_id"`
}

type VideoThumbnailTask struct {
	VideoID string `json:"video_id"`
}

type TransferEmailTask struct {
	TransferID uint `json:"transfer_id"`
}

type ShareEmailTask struct {
	ShareID uint `json:"share_id"`
}

var nc *nats.Conn

// Connect initializes the NATS connection
func Connect(url string) error {
	var err error
	nc, err = nats.Connect(url,
		nats.MaxReconnects(-1), // retry forever
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return err
	}
	log.Info().Str("url", url).Msg("connected to NATS")
	return nil
}

// Publish marshals the task and sends it to a subject. Failures are logged
// and swallowed; background work is best effort.
func Publish(subject string, task interface{}) {
	if nc == nil || !nc.IsConnected() {
		log.Warn().Str("subject", subject).Msg("task dropped, NATS not connected")
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("failed to marshal task")
		return
	}
	if err := nc.Publish(subject, data); err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("failed to publish task")
	}
}

// Subscribe listens to a subject with a handler
func Subscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error) {
	if nc == nil || !nc.IsConnected() {
		return nil, nats.ErrConnectionClosed
	}
	return nc.Subscribe(subject, handler)
}

// Close closes the connection
func Close() {
	if nc != nil && nc.IsConnected() {
		nc.Close()
	}
}
