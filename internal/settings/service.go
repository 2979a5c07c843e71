// Package settings manages the keyed integration configuration blocks.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

var checkoutKeys = []enums.SettingKey{
	enums.SettingKeyUPIID,
	enums.SettingKeyBusinessInfo,
	enums.SettingKeyGoogleSheets,
	enums.SettingKeyGoogleDrive,
	enums.SettingKeyEmailConfig,
	enums.SettingKeyWhatsAppConfig,
}

// Service reads typed blocks and validates admin writes.
type Service interface {
	Snapshot(ctx context.Context) (Snapshot, error)
	UPI(ctx context.Context) (*UPIIdentity, error)
	All(ctx context.Context) (map[enums.SettingKey]json.RawMessage, error)
	Put(ctx context.Context, key enums.SettingKey, raw json.RawMessage) error
}

type service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService wires the settings service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return &service{repo: repo, validate: v}, nil
}

func (s *service) Snapshot(ctx context.Context) (Snapshot, error) {
	rows, err := s.repo.Find(ctx, checkoutKeys...)
	if err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settings")
	}
	var snap Snapshot
	for _, row := range rows {
		var target any
		switch row.Key {
		case enums.SettingKeyUPIID:
			snap.UPI = &UPIIdentity{}
			target = snap.UPI
		case enums.SettingKeyBusinessInfo:
			target = &snap.Business
		case enums.SettingKeyGoogleSheets:
			target = &snap.Sheets
		case enums.SettingKeyGoogleDrive:
			target = &snap.Drive
		case enums.SettingKeyEmailConfig:
			target = &snap.Email
		case enums.SettingKeyWhatsAppConfig:
			target = &snap.WhatsApp
		default:
			continue
		}
		if err := json.Unmarshal(row.Value, target); err != nil {
			return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("decode setting %s", row.Key))
		}
	}
	if snap.UPI != nil && (snap.UPI.ID == "" || snap.UPI.Name == "") {
		snap.UPI = nil
	}
	return snap, nil
}

func (s *service) UPI(ctx context.Context) (*UPIIdentity, error) {
	rows, err := s.repo.Find(ctx, enums.SettingKeyUPIID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load upi identity")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	var id UPIIdentity
	if err := json.Unmarshal(rows[0].Value, &id); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode upi identity")
	}
	if id.ID == "" || id.Name == "" {
		return nil, nil
	}
	return &id, nil
}

func (s *service) All(ctx context.Context) (map[enums.SettingKey]json.RawMessage, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settings")
	}
	out := make(map[enums.SettingKey]json.RawMessage, len(rows))
	for _, row := range rows {
		out[row.Key] = json.RawMessage(row.Value)
	}
	return out, nil
}

func (s *service) Put(ctx context.Context, key enums.SettingKey, raw json.RawMessage) error {
	block, err := blockFor(key)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(block); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid setting value").WithDetails(map[string]any{"error": err.Error()})
	}
	if err := s.validate.Struct(block); err != nil {
		return validationError(err)
	}
	normalized, err := json.Marshal(block)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode setting")
	}
	if err := s.repo.Upsert(ctx, key, datatypes.JSON(normalized)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save setting")
	}
	return nil
}

func blockFor(key enums.SettingKey) (any, error) {
	switch key {
	case enums.SettingKeyUPIID:
		return &UPIIdentity{}, nil
	case enums.SettingKeyBusinessInfo:
		return &models.BusinessInfo{}, nil
	case enums.SettingKeyGoogleSheets:
		return &SheetsConfig{}, nil
	case enums.SettingKeyGoogleDrive:
		return &DriveConfig{}, nil
	case enums.SettingKeyEmailConfig:
		return &EmailConfig{}, nil
	case enums.SettingKeyWhatsAppConfig:
		return &WhatsAppConfig{}, nil
	}
	return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown setting key %q", key)
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := map[string]string{}
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}
