package record

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/portal/internal/platform/blobstore"
)

type Service struct {
	repo   Repository
	signer *blobstore.Signer
}

func NewService(repo Repository, signer *blobstore.Signer) *Service {
	return &Service{repo: repo, signer: signer}
}

func (s *Service) CreateHistory(ctx context.Context, h *HistoryEntry) error {
	if h.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if h.RecordedAt.IsZero() {
		h.RecordedAt = time.Now()
	}
	return s.repo.CreateHistory(ctx, h)
}

// HistoryUpdate carries the fields a PATCH may change.
type HistoryUpdate struct {
	Diagnosis  *string    `json:"diagnosis"`
	Treatment  *string    `json:"treatment"`
	Notes      *string    `json:"notes"`
	RecordedAt *time.Time `json:"recorded_at"`
}

func (s *Service) UpdateHistory(ctx context.Context, id uuid.UUID, params HistoryUpdate) (*HistoryEntry, error) {
	h, err := s.repo.GetHistoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Diagnosis != nil {
		h.Diagnosis = *params.Diagnosis
	}
	if params.Treatment != nil {
		h.Treatment = params.Treatment
	}
	if params.Notes != nil {
		h.Notes = params.Notes
	}
	if params.RecordedAt != nil {
		h.RecordedAt = *params.RecordedAt
	}
	if err := s.repo.UpdateHistory(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Service) DeleteHistory(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteHistory(ctx, id)
}

func (s *Service) SearchHistory(ctx context.Context, params map[string]string, scopeIDs []uuid.UUID, limit, offset int) ([]*HistoryEntry, int, error) {
	return s.repo.SearchHistory(ctx, params, scopeIDs, limit, offset)
}

func (s *Service) SearchVisits(ctx context.Context, params map[string]string, scopeIDs []uuid.UUID, limit, offset int) ([]*Visit, int, error) {
	return s.repo.SearchVisits(ctx, params, scopeIDs, limit, offset)
}

func (s *Service) SearchPrescriptions(ctx context.Context, params map[string]string, scopeIDs []uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.repo.SearchPrescriptions(ctx, params, scopeIDs, limit, offset)
}

func (s *Service) SearchLabResults(ctx context.Context, params map[string]string, scopeIDs []uuid.UUID, limit, offset int) ([]*LabResult, int, error) {
	return s.repo.SearchLabResults(ctx, params, scopeIDs, limit, offset)
}

func (s *Service) VisitsByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*Visit, error) {
	return s.repo.VisitsByPatient(ctx, patientID, limit)
}

func (s *Service) PrescriptionsByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*Prescription, error) {
	return s.repo.PrescriptionsByPatient(ctx, patientID, limit)
}

func (s *Service) LabResultsByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*LabResult, error) {
	return s.repo.LabResultsByPatient(ctx, patientID, limit)
}

// UploadTicket is the response of the first upload phase: where the file
// will live and the signed URL the client PUTs the bytes to.
type UploadTicket struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
	Upload string `json:"upload"`
}

// SignLabUpload mints a signed upload URL for a lab result file. The object
// path is namespaced by patient so uploads never collide across patients.
func (s *Service) SignLabUpload(patientID uuid.UUID, fileName string) (*UploadTicket, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	fileName = sanitizeFileName(fileName)
	if fileName == "" {
		return nil, fmt.Errorf("file_name is required")
	}

	objectPath := fmt.Sprintf("%s/%s/%s_%s", LabBucket, patientID, uuid.New(), fileName)
	upload, err := s.signer.SignUploadURL(objectPath)
	if err != nil {
		return nil, err
	}
	return &UploadTicket{Bucket: LabBucket, Path: objectPath, Upload: upload}, nil
}

// RegisterLabResult records the metadata row for a completed upload.
func (s *Service) RegisterLabResult(ctx context.Context, lr *LabResult) error {
	if lr.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if lr.Path == "" {
		return fmt.Errorf("path is required")
	}
	if lr.Bucket == "" {
		lr.Bucket = LabBucket
	}
	if lr.FileName == "" {
		lr.FileName = path.Base(lr.Path)
	}
	if lr.TestDate.IsZero() {
		lr.TestDate = time.Now()
	}
	return s.repo.CreateLabResult(ctx, lr)
}

// sanitizeFileName keeps only the base name so a caller-supplied name can
// never steer the object path.
func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
