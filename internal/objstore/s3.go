package objstore

import (
	"context"
	"io"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/s3blob"
)

type s3Store struct {
	bk  *blob.Bucket
	ttl time.Duration
}

func openS3(ctx context.Context, c Config) (Store, error) {
	bk, err := blob.OpenBucket(ctx, buildS3URL(c))
	if err != nil {
		return nil, err
	}
	ttl := c.SignedURLTTL
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &s3Store{bk: bk, ttl: ttl}, nil
}

func (s *s3Store) Put(ctx context.Context, key string, r io.ReadSeeker, _ int64, contentType string) error {
	key = sanitizeKey(key)
	w, err := s.bk.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (s *s3Store) SignedURL(ctx context.Context, key string, method string, expiry time.Duration) (string, error) {
	key = sanitizeKey(key)
	if expiry <= 0 {
		expiry = s.ttl
	}
	return s.bk.SignedURL(ctx, key, &blob.SignedURLOptions{Method: method, Expiry: expiry})
}

func (s *s3Store) List(ctx context.Context, prefix string) ([]Object, error) {
	it := s.bk.List(&blob.ListOptions{Prefix: sanitizeKey(prefix)})
	out := []Object{}
	for {
		obj, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if obj.IsDir {
			continue
		}
		out = append(out, Object{Key: obj.Key, Size: obj.Size, LastModified: obj.ModTime})
	}
	return out, nil
}

func (s *s3Store) Delete(ctx context.Context, key string) error {
	return s.bk.Delete(ctx, sanitizeKey(key))
}
