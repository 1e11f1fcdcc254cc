package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/airbusgeo/godal"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/forest-guardian/landcube/internal/properties"
)

const (
	requestRetries   = 10
	requestRetryWait = 5 * time.Second
	maxRequestPixels = 2500
)

// calculatePixels converts a degree distance to a pixel count at the given
// ground resolution in meters.
func calculatePixels(distance float64, resolution float64) int {
	pixels := distance * (111_000.0 / resolution)
	if pixels < 1 {
		return 1
	}
	return int(pixels)
}

func clampPixels(pixels int) int {
	if pixels > maxRequestPixels {
		return maxRequestPixels
	}
	return pixels
}

// requestScene downloads one GeoTIFF covering the geometry for the time
// window. Credentials rotate through the comma-separated client id/secret
// pairs; each pair gets a retry loop before the next one is tried.
func requestScene(profile ProductProfile, geometry *godal.Geometry, startDate, endDate time.Time) ([]byte, error) {
	startDateStr := startDate.Format(time.RFC3339)
	endDateStr := endDate.Format(time.RFC3339)

	bbox, err := geometry.Bounds()
	if err != nil {
		return nil, fmt.Errorf("failed to get geometry bounds: %v", err)
	}

	widthPixels := clampPixels(calculatePixels(bbox[2]-bbox[0], profile.Resolution))
	heightPixels := clampPixels(calculatePixels(bbox[3]-bbox[1], profile.Resolution))

	geometryGeojson, err := geometry.GeoJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to export geometry to GeoJSON: %w", err)
	}
	var geojsonMap map[string]interface{}
	if err := json.Unmarshal([]byte(geometryGeojson), &geojsonMap); err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}

	requestPayload := map[string]interface{}{
		"input": map[string]interface{}{
			"bounds": map[string]interface{}{
				"geometry": geojsonMap,
			},
			"data": []map[string]interface{}{
				{
					"dataFilter": map[string]interface{}{
						"timeRange": map[string]string{
							"from": startDateStr,
							"to":   endDateStr,
						},
					},
					"type": profile.APIType,
				},
			},
		},
		"output": map[string]interface{}{
			"width":  widthPixels,
			"height": heightPixels,
			"responses": []map[string]interface{}{
				{
					"identifier": "default",
					"format": map[string]string{
						"type": "image/tiff",
					},
				},
			},
		},
		"evalscript": profile.evalscript(),
		"mosaicking": "mostRecent",
	}

	requestBody, err := json.Marshal(requestPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %v", err)
	}

	clientIDs := properties.CopernicusClientIDs()
	clientSecrets := properties.CopernicusClientSecrets()
	tokenURL := properties.CopernicusTokenURL()
	if clientIDs == "" || clientSecrets == "" || tokenURL == "" {
		return nil, fmt.Errorf("missing required environment variables: COPERNICUS_CLIENT_ID, COPERNICUS_CLIENT_SECRET, or COPERNICUS_TOKEN_URL")
	}

	clientIDList := strings.Split(clientIDs, ",")
	clientSecretList := strings.Split(clientSecrets, ",")

	var responseContent []byte
	for i, clientID := range clientIDList {
		if i >= len(clientSecretList) {
			return nil, fmt.Errorf("mismatched number of client IDs and secrets")
		}
		config := &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecretList[i],
			TokenURL:     tokenURL,
		}
		httpClient := config.Client(context.Background())

		var response *http.Response
		for attempt := 1; attempt <= requestRetries; attempt++ {
			response, err = httpClient.Post(properties.CopernicusProcessURL(), "application/json", bytes.NewBuffer(requestBody))
			if err == nil && response.StatusCode == http.StatusOK {
				break
			}

			if response != nil {
				body, _ := io.ReadAll(response.Body)
				bodyStr := string(body)
				response.Body.Close()
				if strings.Contains(bodyStr, "403") {
					err = fmt.Errorf("unauthorized access, check your client ID and secret")
					break
				}
				fmt.Printf("Attempt %d failed: %s\n", attempt, bodyStr)
			} else {
				fmt.Printf("Attempt %d failed: %v\n", attempt, err)
			}

			time.Sleep(requestRetryWait)
		}

		if err == nil && (response == nil || response.StatusCode != http.StatusOK) {
			err = fmt.Errorf("process request kept failing")
		}
		if err != nil {
			err = fmt.Errorf("failed to request scene after %d attempts: %v", requestRetries, err)
			continue
		}

		responseContent, err = io.ReadAll(response.Body)
		response.Body.Close()
		if err != nil {
			err = fmt.Errorf("failed to read response body: %v", err)
			continue
		}
		break
	}

	return responseContent, err
}
