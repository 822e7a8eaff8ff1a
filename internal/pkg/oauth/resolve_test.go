package oauth

import (
	"errors"
	"testing"

	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository/repotest"
	"github.com/celumarket/celumarket/internal/pkg/apperror"
)

func TestResolveUser_Existing(t *testing.T) {
	store := repotest.NewStore()
	existing := store.AddUser(models.User{Name: "Ana", Email: "ana@celumarket.test"})

	user, created, err := ResolveUser(store.Repositories().User, goth.User{Provider: "google", UserID: "g-1", Email: " Ana@CeluMarket.test "})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, user.ID)
}

func TestResolveUser_Creates(t *testing.T) {
	store := repotest.NewStore()

	user, created, err := ResolveUser(store.Repositories().User, goth.User{
		Provider:  "google",
		UserID:    "g-2",
		Email:     "nuevo@celumarket.test",
		NickName:  "nuevo",
		AvatarURL: "https://lh3.example/avatar.png",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "nuevo", user.Name)
	assert.Equal(t, models.ROLE_USER, user.Role)
	assert.Equal(t, "https://lh3.example/avatar.png", user.AvatarURL)
	assert.NotEmpty(t, user.Password)

	saved, ok := store.User(user.ID)
	require.True(t, ok)
	assert.Equal(t, "nuevo@celumarket.test", saved.Email)
}

func TestResolveUser_PlaceholderEmail(t *testing.T) {
	store := repotest.NewStore()

	user, created, err := ResolveUser(store.Repositories().User, goth.User{Provider: "facebook", UserID: "fb-9"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "facebook_fb-9@facebook.oauth.local", user.Email)
	assert.Equal(t, "User", user.Name)
}

func TestResolveUser_Banned(t *testing.T) {
	store := repotest.NewStore()
	store.AddUser(models.User{Name: "Ana", Email: "ana@celumarket.test", Status: models.STATUS_BANNED})

	_, _, err := ResolveUser(store.Repositories().User, goth.User{Provider: "google", Email: "ana@celumarket.test"})
	assert.Equal(t, apperror.AccessDenied, apperror.KindOf(err))
}

func TestResolveUser_StoreError(t *testing.T) {
	store := repotest.NewStore()
	store.Err = errors.New("db down")

	_, _, err := ResolveUser(store.Repositories().User, goth.User{Provider: "google", Email: "ana@celumarket.test"})
	assert.Equal(t, apperror.Unexpected, apperror.KindOf(err))
}

func TestSetup_NoProviders(t *testing.T) {
	t.Setenv("GOOGLE_KEY", "")
	t.Setenv("FACEBOOK_KEY", "")
	assert.Empty(t, Setup(nil))
}

func TestSetup_RegistersConfiguredProviders(t *testing.T) {
	t.Setenv("GOOGLE_KEY", "gk")
	t.Setenv("GOOGLE_SECRET", "gs")
	t.Setenv("FACEBOOK_KEY", "")
	t.Setenv("PUBLIC_DOMAIN", "https://celumarket.test/")

	names := Setup(nil)
	assert.Equal(t, []string{"google"}, names)

	p, err := goth.GetProvider("google")
	require.NoError(t, err)
	assert.Equal(t, "google", p.Name())
}
