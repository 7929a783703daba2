package storage

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	deletes []*s3.DeleteObjectInput
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, in)
	return &s3.DeleteObjectOutput{}, nil
}

func newTestStore(f *fakeS3) *Store {
	return &Store{
		client:  f,
		bucket:  "naje-media",
		baseURL: "https://media.naje.example",
		now:     func() time.Time { return time.UnixMilli(1720000000000) },
	}
}

func TestStore_KeyShapeAndURL(t *testing.T) {
	t.Parallel()

	f := &fakeS3{}
	st := newTestStore(f)

	key, url, err := st.Store(context.Background(), []byte("png"), "image/png", "", "Sommer Fest!.png")
	require.NoError(t, err)

	assert.Regexp(t, `^programs/1720000000000-[0-9a-f-]{36}-Sommer_Fest_\.png$`, key)
	assert.Equal(t, "https://media.naje.example/"+key, url)

	require.Len(t, f.puts, 1)
	assert.Equal(t, "naje-media", *f.puts[0].Bucket)
	assert.Equal(t, "image/png", *f.puts[0].ContentType)
	body, _ := io.ReadAll(f.puts[0].Body)
	assert.Equal(t, "png", string(body))
}

func TestDelete_OnlyUnderMediaBase(t *testing.T) {
	t.Parallel()

	f := &fakeS3{}
	st := newTestStore(f)

	require.NoError(t, st.Delete(context.Background(), "https://media.naje.example/programs/123-abc-x.png"))
	require.Len(t, f.deletes, 1)
	assert.Equal(t, "programs/123-abc-x.png", *f.deletes[0].Key)

	assert.Error(t, st.Delete(context.Background(), "https://elsewhere.example/programs/x.png"))
	assert.Error(t, st.Delete(context.Background(), "https://media.naje.example/programs/../secrets"))
	assert.Len(t, f.deletes, 1, "rejected urls must not reach the bucket")
}

func TestNew_UnconfiguredIsNil(t *testing.T) {
	t.Parallel()

	st, err := New(context.Background(), Config{})
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestSafeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "file", safeName(""))
	assert.Equal(t, "bild_2025.jpg", safeName("bild 2025.jpg"))
	assert.Equal(t, "a_b_c", safeName("a/b/c"))
}
