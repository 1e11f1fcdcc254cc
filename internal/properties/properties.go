package properties

import (
	"os"
	"path/filepath"
)

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

func DataPath() string {
	return filepath.Join(RootPath(), "data")
}

// ScenesPath is where ingested scene GeoTIFFs live, one directory per product.
func ScenesPath() string {
	return filepath.Join(DataPath(), "scenes")
}

func ResultPath() string {
	return filepath.Join(DataPath(), "result")
}

func GeojsonsPath() string {
	return filepath.Join(DataPath(), "geojsons")
}

// CatalogPath returns the sqlite scene-index location. Defaults inside the
// data directory so a deployment stays self contained.
func CatalogPath() string {
	if p := os.Getenv("CATALOG_PATH"); p != "" {
		return p
	}
	return filepath.Join(DataPath(), "catalog.db")
}

func CopernicusClientIDs() string {
	return os.Getenv("COPERNICUS_CLIENT_ID")
}

func CopernicusClientSecrets() string {
	return os.Getenv("COPERNICUS_CLIENT_SECRET")
}

func CopernicusTokenURL() string {
	return os.Getenv("COPERNICUS_TOKEN_URL")
}

func CopernicusProcessURL() string {
	if url := os.Getenv("COPERNICUS_PROCESS_URL"); url != "" {
		return url
	}
	return "https://sh.dataspace.copernicus.eu/api/v1/process"
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}

func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}
