package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"backend-touristsafety/internal/alerts"
	"backend-touristsafety/internal/tracking"
	"backend-touristsafety/internal/zones"
)

func (c *Client) Zones(ctx context.Context, kind zones.Kind) ([]zones.Zone, error) {
	path := "/zones"
	if kind != "" {
		path += "?kind=" + url.QueryEscape(string(kind))
	}
	var out []zones.Zone
	err := c.Do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) NearestZone(ctx context.Context, lat, lng float64, kind zones.Kind) (zones.Match, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	if kind != "" {
		q.Set("kind", string(kind))
	}
	var out zones.Match
	err := c.Do(ctx, http.MethodGet, "/zones/nearest?"+q.Encode(), nil, &out)
	return out, err
}

func (c *Client) EmergencyNumbers(ctx context.Context) (map[string]string, error) {
	var out map[string]string
	err := c.Do(ctx, http.MethodGet, "/emergency-numbers", nil, &out)
	return out, err
}

func (c *Client) ReportFix(ctx context.Context, deviceID string, fix tracking.Fix) (tracking.Fix, error) {
	var out tracking.Fix
	err := c.Do(ctx, http.MethodPost, "/tracking/devices/"+url.PathEscape(deviceID)+"/fixes", fix, &out)
	return out, err
}

func (c *Client) DeviceStatus(ctx context.Context, deviceID string) (tracking.DeviceStatus, error) {
	var out tracking.DeviceStatus
	err := c.Do(ctx, http.MethodGet, "/tracking/devices/"+url.PathEscape(deviceID), nil, &out)
	return out, err
}

func (c *Client) StopTracking(ctx context.Context, deviceID string) error {
	return c.Do(ctx, http.MethodDelete, "/tracking/devices/"+url.PathEscape(deviceID), nil, nil)
}

func (c *Client) SendSOS(ctx context.Context, req alerts.SOSRequest) (alerts.Alert, error) {
	var out alerts.Alert
	err := c.Do(ctx, http.MethodPost, "/alerts/sos", req, &out)
	return out, err
}

// Alerts lists alerts selected by filter; an empty filter lists all.
func (c *Client) Alerts(ctx context.Context, filter alerts.Filter) ([]alerts.Alert, error) {
	path := "/alerts"
	if filter != "" {
		path += "?filter=" + url.QueryEscape(string(filter))
	}
	var out []alerts.Alert
	err := c.Do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) UpdateAlertStatus(ctx context.Context, id int64, status alerts.Status) (alerts.Alert, error) {
	var out alerts.Alert
	err := c.Do(ctx, http.MethodPatch, "/alerts/"+strconv.FormatInt(id, 10)+"/status",
		map[string]string{"status": string(status)}, &out)
	return out, err
}

func (c *Client) BulkUpdateAlertStatus(ctx context.Context, ids []int64, status alerts.Status) (alerts.BulkResult, error) {
	var out alerts.BulkResult
	err := c.Do(ctx, http.MethodPatch, "/alerts/status",
		map[string]any{"ids": ids, "status": string(status)}, &out)
	return out, err
}
