package store

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	input   *s3.GetObjectInput
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = in
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		bucket  string
		key     string
		wantErr bool
	}{
		{"bucket and key", "s3://words/english.txt", "words", "english.txt", false},
		{"nested key", "s3://words/lists/en/english.txt", "words", "lists/en/english.txt", false},
		{"no scheme", "words/english.txt", "", "", true},
		{"no key", "s3://words", "", "", true},
		{"empty key", "s3://words/", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := ParseS3URI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestSchemeReader(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "english.txt")
	require.NoError(t, os.WriteFile(path, []byte("local\n"), 0600))

	client := &fakeS3{objects: map[string]string{"words/english.txt": "remote\n"}}
	r := &SchemeReader{Local: &FileReader{}, S3: &S3Reader{Client: client}}

	rc, err := r.Open(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "local\n", readAll(t, rc))

	rc, err = r.Open(ctx, "s3://words/english.txt")
	require.NoError(t, err)
	assert.Equal(t, "remote\n", readAll(t, rc))
	assert.Equal(t, "words", aws.ToString(client.input.Bucket))

	_, err = r.Open(ctx, "s3://words/missing.txt")
	assert.Error(t, err)

	_, err = (&SchemeReader{Local: &FileReader{}}).Open(ctx, "s3://words/english.txt")
	assert.ErrorContains(t, err, "no s3 reader")
}
