package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tiplinehq/tipline/internal/utils"
	"github.com/tiplinehq/tipline/models"
)

var (
	// ErrChunkOutOfOrder is returned when a chunk arrives with a number
	// other than the next expected one for its flow.
	ErrChunkOutOfOrder = errors.New("upload chunk out of order")

	// ErrUnknownFlow is returned when a non-initial chunk references a
	// flow that was never started or has been aborted.
	ErrUnknownFlow = errors.New("unknown upload flow")
)

// ErrFileTooBig is returned when a chunk or the declared total size of an
// upload exceeds the tenant's file size limit.
type ErrFileTooBig struct {
	LimitMB int64
}

func (e *ErrFileTooBig) Error() string {
	return fmt.Sprintf("file upload exceeds the %d MB limit", e.LimitMB)
}

// Chunk is one piece of a chunked upload, as reported by the client.
// Numbers start at 1; the chunk with Number == Total completes the flow.
type Chunk struct {
	FlowID      string
	Number      int
	Total       int
	TotalSize   int64
	Filename    string
	ContentType string
	Description string
	Data        []byte
}

type flow struct {
	mu       sync.Mutex
	file     *SecureTempFile
	next     int
	received int64
}

// Staging accumulates upload chunks into encrypted temporary files. One
// Staging instance serves all tenants; limits are passed per call because
// they are per-tenant configuration.
type Staging struct {
	dir string

	mu        sync.Mutex
	flows     map[string]*flow
	completed map[string]*SecureTempFile
}

// NewStaging returns a staging store writing temporary files under dir.
func NewStaging(dir string) *Staging {
	return &Staging{
		dir:       dir,
		flows:     make(map[string]*flow),
		completed: make(map[string]*SecureTempFile),
	}
}

// Put appends a chunk to its flow, enforcing limitMB against both the
// chunk itself and the declared total size. On the final chunk the flow is
// sealed and a descriptor for the completed file is returned; for all
// earlier chunks the descriptor is nil.
//
// The staging-wide lock is held only while looking up the flow entry, so
// disk writes for distinct flows proceed in parallel.
func (s *Staging) Put(tenantID int64, limitMB int64, chunk Chunk) (*models.UploadedFile, error) {
	limit := limitMB * 1024 * 1024
	if int64(len(chunk.Data)) > limit || chunk.TotalSize > limit {
		s.Abort(chunk.FlowID)
		return nil, &ErrFileTooBig{LimitMB: limitMB}
	}

	f, err := s.flow(chunk)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if chunk.Number != f.next {
		return nil, ErrChunkOutOfOrder
	}

	if _, err := f.file.Write(chunk.Data); err != nil {
		s.Abort(chunk.FlowID)
		return nil, err
	}
	f.next++
	f.received += int64(len(chunk.Data))

	if f.received > limit {
		s.Abort(chunk.FlowID)
		return nil, &ErrFileTooBig{LimitMB: limitMB}
	}

	if chunk.Number < chunk.Total {
		return nil, nil
	}

	if err := f.file.FinalizeWrite(); err != nil {
		s.Abort(chunk.FlowID)
		return nil, err
	}

	descriptor := &models.UploadedFile{
		ID:          utils.RandomKey(16),
		TenantID:    tenantID,
		Name:        chunk.Filename,
		ContentType: contentType(chunk),
		Size:        f.received,
		Filename:    f.file.Path(),
		Description: chunk.Description,
		Date:        time.Now().UTC(),
	}

	s.mu.Lock()
	delete(s.flows, chunk.FlowID)
	s.completed[descriptor.ID] = f.file
	s.mu.Unlock()

	return descriptor, nil
}

// Abort removes a flow and its on-disk file. Unknown flows are ignored.
func (s *Staging) Abort(flowID string) {
	s.mu.Lock()
	f, ok := s.flows[flowID]
	delete(s.flows, flowID)
	s.mu.Unlock()

	if ok {
		f.file.Remove()
	}
}

// Open returns a decrypting reader for a completed upload previously
// returned by Put. The caller owns closing the reader.
func (s *Staging) Open(fileID string) (io.ReadCloser, error) {
	s.mu.Lock()
	file, ok := s.completed[fileID]
	s.mu.Unlock()

	if !ok {
		return nil, ErrUnknownFlow
	}
	return file.Open()
}

// Discard drops a completed upload and deletes its on-disk file. Called
// once the file has been persisted, or when the submission holding it is
// rejected.
func (s *Staging) Discard(fileID string) {
	s.mu.Lock()
	file, ok := s.completed[fileID]
	delete(s.completed, fileID)
	s.mu.Unlock()

	if ok {
		file.Remove()
	}
}

func (s *Staging) flow(chunk Chunk) (*flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.flows[chunk.FlowID]; ok {
		return f, nil
	}

	if chunk.Number != 1 {
		return nil, ErrUnknownFlow
	}

	file, err := NewSecureTempFile(s.dir)
	if err != nil {
		return nil, err
	}

	f := &flow{file: file, next: 1}
	s.flows[chunk.FlowID] = f
	return f, nil
}

func contentType(chunk Chunk) string {
	if chunk.ContentType != "" {
		return chunk.ContentType
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(chunk.Filename))); t != "" {
		return t
	}
	return "application/octet-stream"
}
