package telegram

import (
	"bytes"
	"context"
	"io"

	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"github.com/danhigham/telecache/internal/domain"
)

// ResourceStore keeps downloaded media resources.
type ResourceStore interface {
	Put(id domain.ResourceID, r io.Reader) error
	Has(id domain.ResourceID) bool
}

// resourceDownload is one file a stored message references. Content the
// message already carried inline is in inline and needs no request.
type resourceDownload struct {
	resource domain.ResourceID
	location tg.InputFileLocationClass
	inline   []byte
}

type fetchFunc func(ctx context.Context, location tg.InputFileLocationClass, w io.Writer) error

func (c *Client) fetchFile(ctx context.Context, location tg.InputFileLocationClass, w io.Writer) error {
	_, err := c.downloader.Download(c.api, location).Stream(ctx, w)
	return err
}

// mediaDownloads lists the files worth keeping for a message: inline photo
// thumbnails, the largest photo size and documents up to maxDocumentSize.
func mediaDownloads(m tg.MessageClass, maxDocumentSize int64) []resourceDownload {
	msg, ok := m.(*tg.Message)
	if !ok {
		return nil
	}
	media, ok := msg.GetMedia()
	if !ok {
		return nil
	}

	switch md := media.(type) {
	case *tg.MessageMediaPhoto:
		p, ok := md.GetPhoto()
		if !ok {
			return nil
		}
		photo, ok := p.(*tg.Photo)
		if !ok {
			return nil
		}
		return photoDownloads(photo)
	case *tg.MessageMediaDocument:
		d, ok := md.GetDocument()
		if !ok {
			return nil
		}
		doc, ok := d.(*tg.Document)
		if !ok || doc.Size > maxDocumentSize {
			return nil
		}
		return []resourceDownload{{
			resource: documentResource(doc.ID),
			location: &tg.InputDocumentFileLocation{
				ID:            doc.ID,
				AccessHash:    doc.AccessHash,
				FileReference: doc.FileReference,
			},
		}}
	default:
		return nil
	}
}

func photoDownloads(photo *tg.Photo) []resourceDownload {
	var (
		out     []resourceDownload
		largest string
		area    int
	)
	for _, size := range photo.Sizes {
		switch s := size.(type) {
		case *tg.PhotoCachedSize:
			out = append(out, resourceDownload{resource: photoResource(photo.ID, s.Type), inline: s.Bytes})
		case *tg.PhotoSize:
			if s.W*s.H > area {
				largest, area = s.Type, s.W*s.H
			}
		case *tg.PhotoSizeProgressive:
			if s.W*s.H > area {
				largest, area = s.Type, s.W*s.H
			}
		}
	}
	if largest != "" {
		out = append(out, resourceDownload{
			resource: photoResource(photo.ID, largest),
			location: &tg.InputPhotoFileLocation{
				ID:            photo.ID,
				AccessHash:    photo.AccessHash,
				FileReference: photo.FileReference,
				ThumbSize:     largest,
			},
		})
	}
	return out
}

// downloadResources stores every resource not already in st and returns how
// many were stored. A failed download is logged and skipped.
func downloadResources(ctx context.Context, log *zap.Logger, st ResourceStore, items []resourceDownload, fetch fetchFunc) int {
	stored := 0
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		if st.Has(item.resource) {
			continue
		}

		var err error
		if item.inline != nil {
			err = st.Put(item.resource, bytes.NewReader(item.inline))
		} else {
			err = streamResource(ctx, st, item, fetch)
		}
		if err != nil {
			log.Warn("Failed to download resource", zap.String("resource", string(item.resource)), zap.Error(err))
			continue
		}
		stored++
	}
	return stored
}

// streamResource pipes the remote file straight into the store.
func streamResource(ctx context.Context, st ResourceStore, item resourceDownload, fetch fetchFunc) error {
	pr, pw := io.Pipe()
	fetched := make(chan error, 1)
	go func() {
		err := fetch(ctx, item.location, pw)
		_ = pw.CloseWithError(err)
		fetched <- err
	}()

	err := st.Put(item.resource, pr)
	// Unblocks the writer when Put stopped reading early.
	_ = pr.CloseWithError(err)
	if fetchErr := <-fetched; err == nil {
		err = fetchErr
	}
	return err
}
