// Package worker processes background tasks dispatched over NATS:
// thumbnail generation for uploaded images and videos, and transactional
// email for transfers and shares.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/jpeg"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"folderr-backend/internal/database"
	"folderr-backend/internal/mailer"
	"folderr-backend/internal/models"
	"folderr-backend/internal/storage"
	"folderr-backend/internal/tasks"
)

const (
	thumbnailWidth  = 266
	thumbnailHeight = 145

	// Tasks can arrive before the row they reference is visible on a read
	// replica; poll a few times before giving up.
	lookupAttempts = 10
	lookupWait     = 2 * time.Second
)

type Worker struct {
	mail *mailer.Mailer
}

func New(mail *mailer.Mailer) *Worker {
	return &Worker{mail: mail}
}

// Start subscribes to all task subjects.
func (w *Worker) Start() error {
	subjects := map[string]nats.MsgHandler{
		tasks.SubjectFileThumbnail:  w.handleFileThumbnail,
		tasks.SubjectVideoThumbnail: w.handleVideoThumbnail,
		tasks.SubjectTransferEmail:  w.handleTransferEmail,
		tasks.SubjectShareEmail:     w.handleShareEmail,
	}
	for subject, handler := range subjects {
		if _, err := tasks.Subscribe(subject, handler); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %v", subject, err)
		}
		log.Info().Str("subject", subject).Msg("subscribed")
	}
	return nil
}

func (w *Worker) handleFileThumbnail(msg *nats.Msg) {
	var task tasks.FileThumbnailTask
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		log.Error().Err(err).Msg("bad file thumbnail task")
		return
	}

	db := database.GetDB()
	var file models.File
	if err := retryLookup(func() error {
		return db.First(&file, "id = ?", task.FileID).Error
	}); err != nil {
		log.Error().Err(err).Str("file_id", task.FileID).Msg("file not found for thumbnail")
		return
	}

	if !strings.HasPrefix(file.MimeType, "image/") {
		return
	}

	key, err := w.generateThumbnail(file.ObjectKey)
	if err != nil {
		log.Error().Err(err).Str("file_id", file.ID).Msg("thumbnail generation failed")
		return
	}
	if err := db.Model(&file).UpdateColumn("thumbnail_key", key).Error; err != nil {
		log.Error().Err(err).Str("file_id", file.ID).Msg("failed to save thumbnail key")
		return
	}
	log.Info().Str("file_id", file.ID).Str("thumbnail_key", key).Msg("thumbnail generated")
}

func (w *Worker) handleVideoThumbnail(msg *nats.Msg) {
	var task tasks.VideoThumbnailTask
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		log.Error().Err(err).Msg("bad video thumbnail task")
		return
	}

	db := database.GetDB()
	var video models.VideoFile
	if err := retryLookup(func() error {
		return db.First(&video, "id = ?", task.VideoID).Error
	}); err != nil {
		log.Error().Err(err).Str("video_id", task.VideoID).Msg("video not found")
		return
	}

	// Frame extraction needs a transcoder; until one is wired in the video
	// is published without a poster image.
	if err := db.Model(&video).UpdateColumn("status", models.VideoStatusReady).Error; err != nil {
		log.Error().Err(err).Str("video_id", video.ID).Msg("failed to mark video ready")
		return
	}
	log.Info().Str("video_id", video.ID).Msg("video ready")
}

// generateThumbnail downsizes the stored image and writes it back under a
// thumbnails/ key.
func (w *Worker) generateThumbnail(objectKey string) (string, error) {
	ctx := context.Background()
	rc, err := storage.Get().Download(ctx, objectKey)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	img, err := imaging.Decode(rc, imaging.AutoOrientation(true))
	if err != nil {
		return "", err
	}

	width, height := thumbnailWidth, thumbnailHeight
	if img.Bounds().Dx() < img.Bounds().Dy() {
		width, height = thumbnailHeight, thumbnailWidth
	}
	thumb := imaging.Fit(img, width, height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return "", err
	}

	key := "thumbnails/" + objectKey
	if err := storage.Get().Upload(ctx, key, &buf, int64(buf.Len()), "image/jpeg"); err != nil {
		return "", err
	}
	return key, nil
}

func (w *Worker) handleTransferEmail(msg *nats.Msg) {
	var task tasks.TransferEmailTask
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		log.Error().Err(err).Msg("bad transfer email task")
		return
	}

	db := database.GetDB()
	var transfer models.FolderTransfer
	if err := retryLookup(func() error {
		return db.Preload("FromUser").First(&transfer, task.TransferID).Error
	}); err != nil {
		log.Error().Err(err).Uint("transfer_id", task.TransferID).Msg("transfer not found")
		return
	}

	fromEmail := ""
	if transfer.FromUser != nil {
		fromEmail = transfer.FromUser.Email
	}
	if err := w.mail.SendFolderTransfer(transfer.ToEmail, fromEmail, transfer.FolderID); err != nil {
		log.Error().Err(err).Uint("transfer_id", transfer.ID).Msg("transfer email failed")
	}
}

func (w *Worker) handleShareEmail(msg *nats.Msg) {
	var task tasks.ShareEmailTask
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		log.Error().Err(err).Msg("bad share email task")
		return
	}

	db := database.GetDB()
	var share models.Share
	if err := retryLookup(func() error {
		return db.Preload("Sender").Preload("Folder").First(&share, task.ShareID).Error
	}); err != nil {
		log.Error().Err(err).Uint("share_id", task.ShareID).Msg("share not found")
		return
	}

	toEmail := ""
	if share.ReceiverEmail != nil {
		toEmail = *share.ReceiverEmail
	} else if share.ReceiverID != nil {
		var receiver models.User
		if err := db.First(&receiver, *share.ReceiverID).Error; err == nil {
			toEmail = receiver.Email
		}
	}
	if toEmail == "" {
		return
	}

	title := ""
	if share.Folder != nil {
		title = share.Folder.Title
	}
	senderEmail := ""
	if share.Sender != nil {
		senderEmail = share.Sender.Email
	}
	if err := w.mail.SendShareNotice(toEmail, senderEmail, title); err != nil {
		log.Error().Err(err).Uint("share_id", share.ID).Msg("share email failed")
	}
}

func retryLookup(lookup func() error) error {
	var err error
	for attempt := 0; attempt < lookupAttempts; attempt++ {
		err = lookup()
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		time.Sleep(lookupWait)
	}
	return err
}
