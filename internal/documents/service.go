package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/internal/orders"
	"github.com/fleetdesk/fleetdesk-backend/pkg/config"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/scope"
)

// UploadInput carries one uploaded file. Size is the declared length; the
// service still hard-stops reading at the configured cap.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	Notes       *string
}

// Service attaches uploaded files to orders. Bytes land on the storage
// backend; the order only keeps the returned path.
type Service interface {
	Upload(ctx context.Context, actor scope.Actor, orderID uuid.UUID, input UploadInput) (*orders.DocumentDTO, error)
	List(ctx context.Context, actor scope.Actor, orderID uuid.UUID) ([]orders.DocumentDTO, error)
	Open(ctx context.Context, actor scope.Actor, orderID, docID uuid.UUID) (io.ReadCloser, *orders.DocumentDTO, error)
}

type documentStore interface {
	Save(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

type service struct {
	repo     orders.Repository
	store    documentStore
	maxBytes int64
	policy   scope.Policy
}

// NewService constructs the documents service.
func NewService(repo orders.Repository, store documentStore, cfg config.DocumentsConfig, policy scope.Policy) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if store == nil {
		return nil, fmt.Errorf("document store is required")
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	if policy == nil {
		return nil, fmt.Errorf("scope policy is required")
	}
	return &service{
		repo:     repo,
		store:    store,
		maxBytes: int64(cfg.MaxUploadMB) << 20,
		policy:   policy,
	}, nil
}

func (s *service) Upload(ctx context.Context, actor scope.Actor, orderID uuid.UUID, input UploadInput) (*orders.DocumentDTO, error) {
	name := strings.TrimSpace(input.FileName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file body is required")
	}
	ext, err := validateDocumentType(name, input.ContentType)
	if err != nil {
		return nil, err
	}
	if input.Size > s.maxBytes {
		return nil, s.tooLarge()
	}

	accountFilter := s.policy.AccountFilter(actor)
	order, err := s.repo.FindByID(ctx, accountFilter, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scope.NotFound("order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
	}

	key := fmt.Sprintf("orders/%s/%s%s", order.ID, uuid.New(), ext)
	written, err := s.store.Save(ctx, key, io.LimitReader(input.Body, s.maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store document")
	}
	if written > s.maxBytes {
		if removeErr := s.store.Remove(ctx, key); removeErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, removeErr, "discard oversized document")
		}
		return nil, s.tooLarge()
	}

	doc, err := s.repo.CreateDocument(ctx, &models.OrderDocument{
		OrderID: order.ID,
		Name:    name,
		Path:    key,
		Notes:   trimmedOrNil(input.Notes),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach document")
	}
	return docToDTO(doc), nil
}

func (s *service) List(ctx context.Context, actor scope.Actor, orderID uuid.UUID) ([]orders.DocumentDTO, error) {
	accountFilter := s.policy.AccountFilter(actor)
	order, err := s.repo.FindByID(ctx, accountFilter, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scope.NotFound("order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
	}

	docs, err := s.repo.ListDocuments(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list documents")
	}
	out := make([]orders.DocumentDTO, 0, len(docs))
	for i := range docs {
		out = append(out, *docToDTO(&docs[i]))
	}
	return out, nil
}

func (s *service) Open(ctx context.Context, actor scope.Actor, orderID, docID uuid.UUID) (io.ReadCloser, *orders.DocumentDTO, error) {
	accountFilter := s.policy.AccountFilter(actor)
	if _, err := s.repo.FindByID(ctx, accountFilter, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, scope.NotFound("order")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
	}

	doc, err := s.repo.FindDocument(ctx, orderID, docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, scope.NotFound("document")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find document")
	}

	reader, err := s.store.Open(ctx, doc.Path)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open document")
	}
	return reader, docToDTO(doc), nil
}

func (s *service) tooLarge() error {
	return pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("document exceeds the %d MB upload limit", s.maxBytes>>20))
}

// allowedDocumentExts maps accepted file extensions to the mime types they
// may declare.
var allowedDocumentExts = map[string][]string{
	".pdf":  {"application/pdf"},
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
}

func validateDocumentType(fileName, contentType string) (string, error) {
	ext := strings.ToLower(path.Ext(fileName))
	allowed, ok := allowedDocumentExts[ext]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "document must be a PDF, JPG, JPEG, or PNG file")
	}

	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(contentType))
	if err != nil || mediaType == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "document content type is invalid")
	}
	mediaType = strings.ToLower(mediaType)
	for _, candidate := range allowed {
		if candidate == mediaType {
			return ext, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("content type %s does not match the %s extension", mediaType, ext))
}

func docToDTO(doc *models.OrderDocument) *orders.DocumentDTO {
	return &orders.DocumentDTO{
		ID:         doc.ID,
		Name:       doc.Name,
		Notes:      doc.Notes,
		UploadedAt: doc.UploadedAt,
	}
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	clean := strings.TrimSpace(*value)
	if clean == "" {
		return nil
	}
	return &clean
}
