package app

import (
	"context"

	"tskit/internal/domain"
	"tskit/internal/i18n"
	"tskit/internal/ports"
)

// LocaleAPI stores the UI language picked by the user.
type LocaleAPI struct{ settings ports.SettingsRepository }

func NewLocaleAPI(settings ports.SettingsRepository) *LocaleAPI { return &LocaleAPI{settings: settings} }

func (a *LocaleAPI) Get(ctx context.Context) (string, error) {
	return a.settings.Get(ctx, domain.SettingLanguage)
}

func (a *LocaleAPI) Set(ctx context.Context, locale string) (string, error) {
	norm, err := i18n.NormalizeLocale(locale)
	if err != nil {
		return "", err
	}
	return norm, a.settings.Set(ctx, domain.SettingLanguage, norm)
}

// Clear drops the stored choice so the environment decides again.
func (a *LocaleAPI) Clear(ctx context.Context) error {
	return a.settings.Delete(ctx, domain.SettingLanguage)
}
