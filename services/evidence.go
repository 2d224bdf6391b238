// services/evidence.go - verification evidence intake
package services

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/la-cortesia/cortesia_api/dto"
	"github.com/la-cortesia/cortesia_api/model"
	"github.com/la-cortesia/cortesia_api/shared"
)

const (
	maxEvidenceSize   = 10 << 20 // 10MB
	evidenceURLExpiry = 15 * time.Minute
)

// allowed content types per verification method
var evidenceContentTypes = map[model.VerificationType][]string{
	model.VerifyPhoto: {"image/jpeg", "image/png", "image/webp"},
	model.VerifyAudio: {"audio/mpeg", "audio/ogg", "audio/wav", "audio/webm"},
}

// EvidenceService accepts the photo or audio payload a player hands over
// for verification and stores it in object storage. The object key becomes
// the payload reference passed to verify.
type EvidenceService struct {
	context.DefaultService

	minioSvc *MinIOService
}

const EVIDENCE_SVC = "evidence_svc"

func (svc EvidenceService) Id() string {
	return EVIDENCE_SVC
}

func (svc *EvidenceService) Start() error {
	svc.minioSvc = svc.Service(MINIO_SVC).(*MinIOService)
	return nil
}

func (svc *EvidenceService) UploadEvidence(gameID string, method model.VerificationType, fileHeader *multipart.FileHeader) (*dto.EvidenceResponse, error) {
	allowed, ok := evidenceContentTypes[method]
	if !ok {
		return nil, shared.NewBadRequestError(nil, "Verification method does not take evidence")
	}

	if fileHeader.Size > maxEvidenceSize {
		return nil, shared.NewBadRequestError(nil, "Evidence file too large")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !contains(allowed, contentType) {
		return nil, shared.NewBadRequestError(nil, fmt.Sprintf("Content type %s not allowed for %s verification", contentType, method))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to open uploaded file")
	}
	defer file.Close()

	objectID, _ := uuid.NewV7()
	objectName := fmt.Sprintf("evidence/%s/%s%s", gameID, objectID.String(), strings.ToLower(filepath.Ext(fileHeader.Filename)))

	if _, err := svc.minioSvc.UploadFile(objectName, file, fileHeader.Size, contentType); err != nil {
		return nil, shared.NewInternalError(err, "Failed to store evidence")
	}

	url, err := svc.minioSvc.GetFileURL(objectName, evidenceURLExpiry)
	if err != nil {
		log.WithError(err).WithField(shared.GameID, gameID).Warn("Failed to presign evidence URL")
	}

	return &dto.EvidenceResponse{
		PayloadRef:  objectName,
		ContentType: contentType,
		Size:        fileHeader.Size,
		URL:         url,
	}, nil
}

// GetEvidenceURL presigns a read link for a stored evidence object.
func (svc *EvidenceService) GetEvidenceURL(objectName string) (string, error) {
	url, err := svc.minioSvc.GetFileURL(objectName, evidenceURLExpiry)
	if err != nil {
		return "", shared.NewInternalError(err, "Failed to presign evidence URL")
	}
	return url, nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
