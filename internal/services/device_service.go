package services

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"artlink_backend/internal/appErrors"
	"artlink_backend/internal/models"
	"artlink_backend/internal/repositories"
	"artlink_backend/internal/services/dto"
)

type DeviceService interface {
	Register(userID string, req *dto.RegisterDeviceRequest) (*models.Device, error)
	Unregister(userID, token string) error
	GetActiveDevices(userID string) ([]models.Device, error)
}

type deviceService struct {
	deviceRepo *repositories.DeviceRepository
}

func NewDeviceService(deviceRepo *repositories.DeviceRepository) DeviceService {
	return &deviceService{deviceRepo: deviceRepo}
}

// Register creates or refreshes the (user, token) device row. Re-registering
// a deactivated token reactivates it; the client owning the token is the
// authority on its validity.
func (s *deviceService) Register(userID string, req *dto.RegisterDeviceRequest) (*models.Device, error) {
	if !models.ValidPlatform(req.Platform) {
		return nil, appErrors.ErrInvalidPlatform
	}

	var keys datatypes.JSON
	if req.PushKeys != nil {
		raw, err := json.Marshal(req.PushKeys)
		if err != nil {
			return nil, appErrors.ErrValidationFailed.WithError(err)
		}
		keys = datatypes.JSON(raw)
	}

	device := &models.Device{
		UserID:   userID,
		Token:    req.Token,
		Platform: req.Platform,
		PushKeys: keys,
	}
	device.ID = uuid.New().String()

	if err := s.deviceRepo.Upsert(device); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return device, nil
}

func (s *deviceService) Unregister(userID, token string) error {
	err := s.deviceRepo.DeactivateByToken(userID, token)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return appErrors.ErrDeviceNotFound
	}
	if err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *deviceService) GetActiveDevices(userID string) ([]models.Device, error) {
	return s.deviceRepo.GetActiveByUser(userID)
}
