package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository/repotest"
	"github.com/celumarket/celumarket/internal/pkg/apperror"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateImageBySniff(t *testing.T) {
	pngData := pngBytes(t, 4, 4)

	tests := []struct {
		name     string
		filename string
		head     []byte
		wantMime string
		wantErr  error
	}{
		{"png", "me.png", pngData, "image/png", nil},
		{"uppercase extension", "ME.PNG", pngData, "image/png", nil},
		{"unsupported extension", "me.webp", pngData, "", ErrUnsupportedFormat},
		{"html disguised as jpg", "me.jpg", []byte("<!DOCTYPE html><html></html>"), "", ErrScriptableContent},
		{"svg", "me.png", []byte(`<?xml version="1.0"?><svg></svg>`), "", ErrScriptableContent},
		{"plain text", "me.jpg", []byte("hello"), "", ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, err := ValidateImageBySniff(tt.filename, tt.head)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMime, mime)
		})
	}
}

func TestProcessAvatar(t *testing.T) {
	out, err := ProcessAvatar(pngBytes(t, 400, 200))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, AvatarSize, img.Bounds().Dx())
	assert.Equal(t, AvatarSize, img.Bounds().Dy())
}

func TestProcessAvatar_InvalidData(t *testing.T) {
	_, err := ProcessAvatar([]byte("not an image"))
	assert.Error(t, err)
}

func TestApplyOrientation(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))

	assert.Equal(t, image.Rect(0, 0, 4, 2), applyOrientation(img, 1).Bounds())
	assert.Equal(t, image.Rect(0, 0, 4, 2), applyOrientation(img, 3).Bounds())
	assert.Equal(t, image.Rect(0, 0, 2, 4), applyOrientation(img, 6).Bounds())
	assert.Equal(t, image.Rect(0, 0, 2, 4), applyOrientation(img, 8).Bounds())
}

func TestExifOrientation_NoExif(t *testing.T) {
	assert.Equal(t, 1, exifOrientation(pngBytes(t, 2, 2)))
}

func TestGravatarURL(t *testing.T) {
	a := GravatarURL("  Ana@CeluMarket.test ", 0)
	b := GravatarURL("ana@celumarket.test", AvatarSize)
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "https://www.gravatar.com/avatar/"))
	assert.Contains(t, a, "s=256")

	assert.Equal(t, "/uploads/a.jpg", AvatarURLFor("/uploads/a.jpg", "ana@celumarket.test"))
	assert.Equal(t, b, AvatarURLFor("", "ana@celumarket.test"))
}

func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "/uploads/")
	ctx := context.Background()

	url, err := store.Put(ctx, "avatars/1/a.jpg", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/avatars/1/a.jpg", url)

	data, err := os.ReadFile(filepath.Join(root, "avatars", "1", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	_, err = store.Put(ctx, "../../etc/passwd", []byte("x"), "text/plain")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "etc", "passwd"))
	assert.NoError(t, err, "keys are confined to the root")

	require.NoError(t, store.Delete(ctx, "avatars/1/a.jpg"))
	require.NoError(t, store.Delete(ctx, "avatars/1/a.jpg"))
	_, err = store.Put(ctx, "", nil, "")
	assert.Error(t, err)
}

func TestS3ConfigObjectURL(t *testing.T) {
	cfg := &S3Config{BucketName: "avatars", Region: "eu-west-1"}
	assert.Equal(t, "https://avatars.s3.eu-west-1.amazonaws.com/a.jpg", cfg.ObjectURL("a.jpg"))

	cfg.EndpointURL = "http://minio:9000/"
	assert.Equal(t, "http://minio:9000/avatars/a.jpg", cfg.ObjectURL("a.jpg"))

	cfg.PublicURL = "https://cdn.celumarket.test/"
	assert.Equal(t, "https://cdn.celumarket.test/a.jpg", cfg.ObjectURL("a.jpg"))
}

func TestLoadS3Config(t *testing.T) {
	t.Setenv("S3_ENABLED", "true")
	t.Setenv("S3_ACCESS_KEY_ID", "")
	_, err := LoadS3Config()
	assert.Error(t, err)

	t.Setenv("S3_ENABLED", "false")
	cfg, err := LoadS3Config()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}

func TestNewStoreFromEnv_Local(t *testing.T) {
	t.Setenv("S3_ENABLED", "false")
	store := NewStoreFromEnv(context.Background(), t.TempDir())
	assert.Equal(t, "local", store.Name())

	t.Setenv("S3_ENABLED", "true")
	t.Setenv("S3_ACCESS_KEY_ID", "")
	assert.Equal(t, "local", NewStoreFromEnv(context.Background(), "").Name())
}

func TestAvatarService_Upload(t *testing.T) {
	store := repotest.NewStore()
	user := store.AddUser(models.User{Name: "Ana", Email: "ana@celumarket.test"})
	local := NewLocalStore(t.TempDir(), "/uploads")
	svc := NewAvatarService(local, store.Repositories().User)

	updated, err := svc.Upload(context.Background(), user.ID, "me.png", pngBytes(t, 300, 300))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.AvatarURL, "/uploads/avatars/"))

	saved, _ := store.User(user.ID)
	assert.Equal(t, updated.AvatarURL, saved.AvatarURL)
}

func TestAvatarService_Errors(t *testing.T) {
	store := repotest.NewStore()
	user := store.AddUser(models.User{Name: "Ana", Email: "ana@celumarket.test"})
	svc := NewAvatarService(NewLocalStore(t.TempDir(), "/uploads"), store.Repositories().User)
	ctx := context.Background()

	tests := []struct {
		name     string
		userID   uint
		filename string
		data     []byte
		kind     apperror.Kind
	}{
		{"anonymous", 0, "me.png", pngBytes(t, 2, 2), apperror.Unauthenticated},
		{"empty", user.ID, "me.png", nil, apperror.Validation},
		{"too large", user.ID, "me.png", make([]byte, MaxAvatarBytes+1), apperror.Validation},
		{"not an image", user.ID, "me.png", []byte("hello world"), apperror.Validation},
		{"unknown user", 999, "me.png", pngBytes(t, 2, 2), apperror.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, tt.userID, tt.filename, tt.data)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}
}
