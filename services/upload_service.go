package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var uploadFolders = map[string]string{
	"attachment": "school_admin_attachments",
	"avatar":     "school_admin_avatars",
}

type UploadSignature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"apiKey"`
	CloudName string `json:"cloudName"`
	Folder    string `json:"folder"`
}

// UploadService signs direct browser uploads to Cloudinary.
type UploadService struct {
	cloudName string
	apiKey    string
	secret    string
	now       func() time.Time
}

// NewUploadService returns nil, nil when cloudinaryURL is empty; callers
// then report uploads as disabled.
func NewUploadService(cloudinaryURL string) (*UploadService, error) {
	if cloudinaryURL == "" {
		return nil, nil
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &UploadService{
		cloudName: cld.Config.Cloud.CloudName,
		apiKey:    cld.Config.Cloud.APIKey,
		secret:    cld.Config.Cloud.APISecret,
		now:       utcNow,
	}, nil
}

func (s *UploadService) Sign(purpose string) (*UploadSignature, error) {
	if s == nil {
		return nil, apperrors.ErrUploadsDisabled
	}
	folder, ok := uploadFolders[purpose]
	if !ok {
		return nil, apperrors.Invalid("Unknown upload purpose")
	}

	paramsToSign, err := api.StructToParams(uploader.UploadParams{Folder: folder})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Failed to prepare signature params", err)
	}
	timestamp := s.now().Unix()
	paramsToSign.Set("timestamp", strconv.FormatInt(timestamp, 10))

	signature, err := api.SignParameters(paramsToSign, s.secret)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Failed to sign upload params", err)
	}

	return &UploadSignature{
		Signature: signature,
		Timestamp: timestamp,
		APIKey:    s.apiKey,
		CloudName: s.cloudName,
		Folder:    folder,
	}, nil
}
