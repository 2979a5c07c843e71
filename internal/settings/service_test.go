package settings

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)
	return svc
}

func TestSnapshotDefaultsToDisabled(t *testing.T) {
	svc := newTestService(t)
	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap.UPI)
	assert.False(t, snap.Email.Enabled)
	assert.False(t, snap.WhatsApp.Enabled)
	assert.False(t, snap.Sheets.Enabled)
	assert.False(t, snap.Drive.Enabled)
}

func TestPutThenSnapshot(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.Put(ctx, enums.SettingKeyUPIID, json.RawMessage(`{"id":"shop@upi","name":"Campus Closet"}`)))
	require.NoError(t, svc.Put(ctx, enums.SettingKeyBusinessInfo, json.RawMessage(`{"name":"Campus Closet","address":"Main Rd","phone":"999","email":"shop@example.com","gstin":"29X"}`)))
	require.NoError(t, svc.Put(ctx, enums.SettingKeyEmailConfig, json.RawMessage(`{"smtp_host":"smtp.test","smtp_port":587,"from_email":"shop@example.com","enabled":true}`)))
	require.NoError(t, svc.Put(ctx, enums.SettingKeyGoogleSheets, json.RawMessage(`{"sheet_id":"s1","api_key":"k","enabled":true}`)))
	require.NoError(t, svc.Put(ctx, enums.SettingKeyGoogleSheets, json.RawMessage(`{"sheet_id":"s2","api_key":"k","enabled":true}`)))

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.UPI)
	assert.Equal(t, "shop@upi", snap.UPI.ID)
	assert.Equal(t, "Campus Closet", snap.Business.Name)
	assert.True(t, snap.Email.Enabled)
	assert.Equal(t, 587, snap.Email.SMTPPort)
	assert.Equal(t, "s2", snap.Sheets.SheetID, "upsert should replace the block")

	upi, err := svc.UPI(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Campus Closet", upi.Name)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestPutValidates(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	err := svc.Put(ctx, enums.SettingKeyWhatsAppConfig, json.RawMessage(`{"enabled":true}`))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "enabled block needs credentials: %v", err)

	err = svc.Put(ctx, enums.SettingKeyWhatsAppConfig, json.RawMessage(`{"enabled":false}`))
	assert.NoError(t, err, "disabled block may be empty")

	err = svc.Put(ctx, enums.SettingKeyUPIID, json.RawMessage(`{"id":"x","name":"y","extra":1}`))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = svc.Put(ctx, enums.SettingKey("nope"), json.RawMessage(`{}`))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = svc.Put(ctx, enums.SettingKeyBusinessInfo, json.RawMessage(`{"name":""}`))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
