package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"resume-tracker/internal/platform"
	"resume-tracker/internal/resumes"
)

func TestCardFallbackChain(t *testing.T) {
	const imagePath = "images/r1/preview.png"
	png := []byte("\x89PNG\r\n\x1a\nbody")

	tests := []struct {
		name       string
		imagePath  string
		fs         *fakeFS
		renderFail bool
		wantPrefix string
		want       string
	}{
		{
			name:       "blob loads",
			imagePath:  imagePath,
			fs:         &fakeFS{blobs: map[string][]byte{imagePath: png}},
			wantPrefix: platform.ObjectURLPrefix,
		},
		{
			name:      "blob read fails falls back to raw path",
			imagePath: imagePath,
			fs:        &fakeFS{failRead: map[string]error{imagePath: errors.New("denied")}},
			want:      imagePath,
		},
		{
			name:       "raw path fails to render falls back to placeholder",
			imagePath:  imagePath,
			fs:         &fakeFS{},
			renderFail: true,
			want:       PlaceholderImage,
		},
		{
			name:       "object url fails to render falls back to placeholder",
			imagePath:  imagePath,
			fs:         &fakeFS{blobs: map[string][]byte{imagePath: png}},
			renderFail: true,
			want:       PlaceholderImage,
		},
		{
			name: "no image path uses placeholder",
			fs:   &fakeFS{},
			want: PlaceholderImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urls := platform.NewObjectURLs()
			card := NewCard("user-1", resumes.Resume{ID: "r1", ImagePath: tt.imagePath})
			card.LoadPreview(context.Background(), tt.fs, urls)
			if tt.renderFail {
				assert.Equal(t, PlaceholderImage, card.OnImageError())
			}

			got := card.Source()
			if tt.wantPrefix != "" {
				assert.Contains(t, got, tt.wantPrefix)
				return
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, card.Snapshot().ImageSrc)
		})
	}
}

func TestCardUpdateWithNewImageRevokesPreview(t *testing.T) {
	urls := platform.NewObjectURLs()
	fs := &fakeFS{blobs: map[string][]byte{"images/a.png": []byte("a")}}
	card := NewCard("user-1", resumes.Resume{ID: "r1", ImagePath: "images/a.png"})
	card.LoadPreview(context.Background(), fs, urls)
	assert.Equal(t, 1, urls.Len())

	card.Update(resumes.Resume{ID: "r1", ImagePath: "images/b.png"})
	assert.Equal(t, 0, urls.Len())
	assert.Equal(t, "images/b.png", card.Source())
}

func TestCardPreviewAfterCloseIsDiscarded(t *testing.T) {
	urls := platform.NewObjectURLs()
	fs := &fakeFS{blobs: map[string][]byte{"images/a.png": []byte("a")}}
	card := NewCard("user-1", resumes.Resume{ID: "r1", ImagePath: "images/a.png"})
	card.Close()

	card.LoadPreview(context.Background(), fs, urls)
	assert.Equal(t, 0, urls.Len())
}

func TestCardObjectURLIsOwnerScoped(t *testing.T) {
	urls := platform.NewObjectURLs()
	fs := &fakeFS{blobs: map[string][]byte{"images/a.png": []byte("\x89PNG\r\n\x1a\n")}}
	card := NewCard("user-1", resumes.Resume{ID: "r1", ImagePath: "images/a.png"})
	card.LoadPreview(context.Background(), fs, urls)

	id := card.Source()[len(platform.ObjectURLPrefix):]
	blob, ok := urls.Open("user-1", id)
	assert.True(t, ok)
	assert.Equal(t, "image/png", blob.ContentType)
	_, ok = urls.Open("user-2", id)
	assert.False(t, ok)
}
