// Package blobstore backs the two-phase lab result upload flow: handlers
// mint a signed upload URL, the client PUTs the file bytes against it, and
// the file lands in the configured store. Signatures are HMAC over the
// object path and expiry, so the PUT endpoint needs no session state.
package blobstore

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	ErrBlobNotFound     = errors.New("blob not found")
	ErrFileTooLarge     = errors.New("file exceeds maximum allowed size")
	ErrInvalidSignature = errors.New("invalid upload signature")
	ErrExpiredSignature = errors.New("upload signature expired")
	ErrInvalidPath      = errors.New("invalid object path")
)

// MaxFileSize is the maximum allowed blob size in bytes (100 MB).
const MaxFileSize = 100 * 1024 * 1024

// DefaultUploadTTL bounds how long a minted upload URL stays valid.
const DefaultUploadTTL = 15 * time.Minute

// Signer mints and verifies signed upload URLs.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultUploadTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// SignUploadURL returns a relative URL the client can PUT file bytes to.
func (s *Signer) SignUploadURL(path string) (string, error) {
	if err := validatePath(path); err != nil {
		return "", err
	}
	expires := s.now().Add(s.ttl).Unix()
	sig := s.sign(path, expires)
	return fmt.Sprintf("/uploads/%s?expires=%d&sig=%s", path, expires, url.QueryEscape(sig)), nil
}

// Verify checks the signature and expiry presented with an upload PUT.
func (s *Signer) Verify(path, expiresRaw, sig string) error {
	if err := validatePath(path); err != nil {
		return err
	}
	expires, err := strconv.ParseInt(expiresRaw, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	want := s.sign(path, expires)
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return ErrInvalidSignature
	}
	if s.now().Unix() > expires {
		return ErrExpiredSignature
	}
	return nil
}

func (s *Signer) sign(path string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%d", path, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

func validatePath(path string) error {
	if path == "" || strings.HasPrefix(path, "/") || strings.Contains(path, "..") {
		return ErrInvalidPath
	}
	return nil
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
	Hash string `json:"hash"`
}

// Store persists uploaded file bytes under an object path.
type Store interface {
	Put(path string, content io.Reader) (*ObjectInfo, error)
	Open(path string) (io.ReadCloser, error)
	Delete(path string) error
}

// DiskStore writes objects beneath a root directory.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{root: root}
}

func (s *DiskStore) Put(path string, content io.Reader) (*ObjectInfo, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}

	data, err := readLimited(content)
	if err != nil {
		return nil, err
	}

	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing object: %w", err)
	}

	return info(path, data), nil
}

func (s *DiskStore) Open(path string) (io.ReadCloser, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(path)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	return f, err
}

func (s *DiskStore) Delete(path string) error {
	if err := validatePath(path); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(path)))
	if errors.Is(err, os.ErrNotExist) {
		return ErrBlobNotFound
	}
	return err
}

// MemStore is a thread-safe in-memory Store for tests.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte)}
}

func (s *MemStore) Put(path string, content io.Reader) (*ObjectInfo, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	data, err := readLimited(content)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.objects[path] = data
	s.mu.Unlock()
	return info(path, data), nil
}

func (s *MemStore) Open(path string) (io.ReadCloser, error) {
	s.mu.RLock()
	data, ok := s.objects[path]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemStore) Delete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[path]; !ok {
		return ErrBlobNotFound
	}
	delete(s.objects, path)
	return nil
}

func readLimited(content io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

func info(path string, data []byte) *ObjectInfo {
	h := sha256.Sum256(data)
	return &ObjectInfo{
		Path: path,
		Size: int64(len(data)),
		Hash: hex.EncodeToString(h[:]),
	}
}
