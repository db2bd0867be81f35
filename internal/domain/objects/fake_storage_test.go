package objects

import (
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// memStorage pages a sorted key set with numeric continuation tokens.
type memStorage struct {
	mu        sync.Mutex
	objects   map[string]Object
	listCalls int
	putTypes  map[string]string
}

func newMemStorage(objs ...Object) *memStorage {
	s := &memStorage{objects: map[string]Object{}, putTypes: map[string]string{}}
	for _, o := range objs {
		s.objects[o.Key] = o
	}
	return s
}

func (s *memStorage) ListObjects(_ context.Context, in ListInput) (*UpstreamPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++

	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, in.Prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != "" {
		start, _ = strconv.Atoi(in.ContinuationToken)
	}
	end := min(start+in.MaxKeys, len(keys))

	page := &UpstreamPage{}
	for _, k := range keys[start:end] {
		page.Objects = append(page.Objects, s.objects[k])
	}
	if end < len(keys) {
		page.IsTruncated = true
		page.NextToken = strconv.Itoa(end)
	}
	return page, nil
}

func (s *memStorage) PutObject(_ context.Context, in PutInput) (*Object, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	obj := NewObject(in.Key, int64(len(data)), time.Now().UTC(), `"etag"`)
	obj.ContentType = in.ContentType
	s.objects[in.Key] = obj
	s.putTypes[in.Key] = in.ContentType
	return &obj, nil
}

func (s *memStorage) GetObject(_ context.Context, _, key string) (*Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.objects[key]
	return &Stream{Body: io.NopCloser(strings.NewReader("")), ContentLength: o.Size}, nil
}

func (s *memStorage) DeleteObject(_ context.Context, _, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memStorage) DeleteObjects(_ context.Context, _ string, keys []string) (*DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := &DeleteResult{}
	for _, k := range keys {
		delete(s.objects, k)
		result.Deleted = append(result.Deleted, k)
	}
	return result, nil
}

func (s *memStorage) PresignGet(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://example.test/" + bucket + "/" + key, nil
}
