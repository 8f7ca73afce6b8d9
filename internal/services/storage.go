package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	apperrors "resume-analyzer/internal/errors"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/models"
)

const jobRolesSchema = `{
  "type": "object",
  "minProperties": 1,
  "additionalProperties": {
    "type": "array",
    "items": {"type": "string", "minLength": 1}
  }
}`

const feedbackTemplatesSchema = `{
  "type": "object",
  "additionalProperties": {"type": "string"}
}`

// DefaultJobRoles is written to disk when no job-role file exists yet.
func DefaultJobRoles() models.JobRoles {
	return models.JobRoles{
		"Python Developer":   {"Python", "Django", "Flask", "SQL", "REST", "Git"},
		"Data Scientist":     {"Python", "Pandas", "NumPy", "Machine Learning", "SQL", "Statistics"},
		"Frontend Developer": {"JavaScript", "React", "HTML", "CSS", "TypeScript", "Git"},
		"Backend Developer":  {"Java", "Spring", "SQL", "Docker", "REST", "Microservices"},
		"MERN Stack":         {"MongoDB", "Express", "React", "Node.js", "JavaScript", "MERN"},
	}
}

type StorageService interface {
	EnsureDataDir() error
	LoadJobRoles() models.JobRoles
	LoadFeedbackTemplates() map[string]string
	ReadUpload(file *multipart.FileHeader) (models.ResumeDocument, error)
}

type storageService struct {
	dataDir       string
	rolesFile     string
	templatesFile string
	maxFileSize   int64
	log           *zap.Logger
}

func NewStorageService(dataDir, rolesFile, templatesFile string, maxFileSize int64, log *zap.Logger) StorageService {
	return &storageService{
		dataDir:       dataDir,
		rolesFile:     rolesFile,
		templatesFile: templatesFile,
		maxFileSize:   maxFileSize,
		log:           logger.OrNop(log),
	}
}

func (s *storageService) EnsureDataDir() error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	return nil
}

// LoadJobRoles never fails: a missing file is bootstrapped with the defaults,
// an unreadable or invalid one is left alone and the defaults are served.
func (s *storageService) LoadJobRoles() models.JobRoles {
	path := filepath.Join(s.dataDir, s.rolesFile)

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("Job roles file missing, writing defaults",
			zap.Error(apperrors.NewConfigMissingError(path, err)))
		roles := DefaultJobRoles()
		if werr := s.writeJSON(path, roles); werr != nil {
			s.log.Warn("Failed to write default job roles", zap.String("path", path), zap.Error(werr))
		}
		return roles
	}
	if err != nil {
		s.log.Warn("Failed to read job roles, using defaults", zap.String("path", path), zap.Error(err))
		return DefaultJobRoles()
	}

	if err := validateDocument(jobRolesSchema, raw); err != nil {
		s.log.Warn("Invalid job roles file, using defaults", zap.String("path", path), zap.Error(err))
		return DefaultJobRoles()
	}

	var roles models.JobRoles
	if err := json.Unmarshal(raw, &roles); err != nil {
		s.log.Warn("Failed to decode job roles, using defaults", zap.String("path", path), zap.Error(err))
		return DefaultJobRoles()
	}
	return roles
}

// LoadFeedbackTemplates returns templates keyed by lowercased skill, or an
// empty map when the file is missing or invalid.
func (s *storageService) LoadFeedbackTemplates() map[string]string {
	path := filepath.Join(s.dataDir, s.templatesFile)
	templates := make(map[string]string)

	raw, err := os.ReadFile(path)
	if err != nil {
		s.log.Info("Feedback templates unavailable, using generic suggestions",
			zap.String("path", path), zap.Error(err))
		return templates
	}

	if err := validateDocument(feedbackTemplatesSchema, raw); err != nil {
		s.log.Warn("Invalid feedback templates file", zap.String("path", path), zap.Error(err))
		return templates
	}

	var decoded map[string]string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		s.log.Warn("Failed to decode feedback templates", zap.String("path", path), zap.Error(err))
		return templates
	}
	for k, v := range decoded {
		templates[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return templates
}

// ReadUpload loads an uploaded resume into memory. Uploads are never
// persisted to disk.
func (s *storageService) ReadUpload(file *multipart.FileHeader) (models.ResumeDocument, error) {
	format, err := FormatFromFilename(file.Filename)
	if err != nil {
		return models.ResumeDocument{}, err
	}

	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return models.ResumeDocument{}, apperrors.NewInvalidRequestError(
			fmt.Sprintf("file exceeds maximum size of %d bytes", s.maxFileSize))
	}

	src, err := file.Open()
	if err != nil {
		return models.ResumeDocument{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return models.ResumeDocument{}, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return models.ResumeDocument{
		Filename: file.Filename,
		Format:   format,
		Data:     data,
	}, nil
}

func (s *storageService) writeJSON(path string, v interface{}) error {
	if err := s.EnsureDataDir(); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func validateDocument(schema string, raw []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// RoleNames lists role names in stable display order.
func RoleNames(roles models.JobRoles) []string {
	names := make([]string, 0, len(roles))
	for name := range roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
