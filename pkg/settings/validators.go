package settings

import "github.com/shelfdmedia/shelfd/pkg/models"

// SettingPayload is the request body for updating a setting.
type SettingPayload struct {
	Value string `json:"value" validate:"required"`
}

// SettingResponse is the response for a single setting.
type SettingResponse struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

// KnownKeys returns the setting keys the scanner consults.
func KnownKeys() []string {
	return []string{
		models.SettingTVMetadataEnabled,
		models.SettingMovieMetadataEnabled,
		models.SettingBookMetadataEnabled,
		models.SettingTVEpisodesMetadataEnabled,
		models.SettingSaveImagesLocally,
	}
}

// IsKnownKey returns true if the key is one the scanner consults.
func IsKnownKey(key string) bool {
	for _, valid := range KnownKeys() {
		if key == valid {
			return true
		}
	}
	return false
}
