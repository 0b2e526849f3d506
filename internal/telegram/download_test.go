package telegram

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/gotd/td/tg"
	"go.uber.org/zap/zaptest"

	"github.com/danhigham/telecache/internal/domain"
	"github.com/danhigham/telecache/internal/media"
)

func photoMessage(photo *tg.Photo) *tg.Message {
	var md tg.MessageMediaPhoto
	md.SetPhoto(photo)
	msg := &tg.Message{ID: 1}
	msg.SetMedia(&md)
	return msg
}

func documentMessage(doc *tg.Document) *tg.Message {
	var md tg.MessageMediaDocument
	md.SetDocument(doc)
	msg := &tg.Message{ID: 2}
	msg.SetMedia(&md)
	return msg
}

func TestMediaDownloads_Photo(t *testing.T) {
	msg := photoMessage(&tg.Photo{
		ID:            9,
		AccessHash:    99,
		FileReference: []byte{1},
		Sizes: []tg.PhotoSizeClass{
			&tg.PhotoCachedSize{Type: "s", W: 90, H: 90, Bytes: []byte("thumb")},
			&tg.PhotoSize{Type: "m", W: 320, H: 320},
			&tg.PhotoSizeProgressive{Type: "y", W: 1280, H: 1280},
		},
	})

	got := mediaDownloads(msg, 1<<20)
	if len(got) != 2 {
		t.Fatalf("downloads = %+v, want inline and largest", got)
	}
	if got[0].resource != photoResource(9, "s") || string(got[0].inline) != "thumb" {
		t.Errorf("inline download = %+v", got[0])
	}
	loc, ok := got[1].location.(*tg.InputPhotoFileLocation)
	if !ok || got[1].resource != photoResource(9, "y") || loc.ThumbSize != "y" || loc.AccessHash != 99 {
		t.Errorf("remote download = %+v", got[1])
	}
}

func TestMediaDownloads_DocumentSizeLimit(t *testing.T) {
	small := documentMessage(&tg.Document{ID: 4, AccessHash: 44, Size: 512})
	got := mediaDownloads(small, 1024)
	if len(got) != 1 || got[0].resource != documentResource(4) {
		t.Fatalf("downloads = %+v", got)
	}
	if loc, ok := got[0].location.(*tg.InputDocumentFileLocation); !ok || loc.ID != 4 || loc.AccessHash != 44 {
		t.Errorf("location = %+v", got[0].location)
	}

	large := documentMessage(&tg.Document{ID: 5, Size: 4096})
	if got := mediaDownloads(large, 1024); len(got) != 0 {
		t.Errorf("oversized document downloads = %+v", got)
	}

	if got := mediaDownloads(&tg.Message{ID: 3, Message: "text"}, 1024); len(got) != 0 {
		t.Errorf("text message downloads = %+v", got)
	}
}

func TestDownloadResources(t *testing.T) {
	dir := t.TempDir()
	box, err := media.NewBox(dir, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewBox() error: %v", err)
	}
	defer box.Close()

	if err := box.Put("document-1", strings.NewReader("old")); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	items := []resourceDownload{
		{resource: "document-1", location: &tg.InputDocumentFileLocation{ID: 1}},
		{resource: "photo-2-s", inline: []byte("thumb")},
		{resource: "photo-2-y", location: &tg.InputPhotoFileLocation{ID: 2, ThumbSize: "y"}},
		{resource: "document-3", location: &tg.InputDocumentFileLocation{ID: 3}},
	}

	var fetched []tg.InputFileLocationClass
	fetch := func(ctx context.Context, location tg.InputFileLocationClass, w io.Writer) error {
		fetched = append(fetched, location)
		if loc, ok := location.(*tg.InputDocumentFileLocation); ok && loc.ID == 3 {
			_, _ = w.Write([]byte("partial"))
			return errors.New("FILE_REFERENCE_EXPIRED")
		}
		_, err := w.Write([]byte("full photo"))
		return err
	}

	stored := downloadResources(context.Background(), zaptest.NewLogger(t), box, items, fetch)
	if stored != 2 {
		t.Errorf("stored = %d, want 2", stored)
	}
	if len(fetched) != 2 {
		t.Errorf("fetched %d files, want 2 (existing and inline skipped)", len(fetched))
	}

	for id, want := range map[domain.ResourceID]string{"photo-2-s": "thumb", "photo-2-y": "full photo"} {
		data, err := os.ReadFile(box.Path(id))
		if err != nil || string(data) != want {
			t.Errorf("%s = %q, %v, want %q", id, data, err, want)
		}
	}
	if box.Has("document-3") {
		t.Error("failed download left a file behind")
	}
}
