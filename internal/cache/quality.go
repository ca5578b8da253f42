package cache

import (
	"net/url"
	"strings"
)

// DefaultRemoteBase is the host prefix of YouTube thumbnails
const DefaultRemoteBase = "https://i.ytimg.com/vi"

// Quality is a named resolution tier of a thumbnail
type Quality string

const (
	MaxResDefault Quality = "maxresdefault"
	SDDefault     Quality = "sddefault"
	HQDefault     Quality = "hqdefault"
	MQDefault     Quality = "mqdefault"
	Default       Quality = "default"
)

var qualities = []Quality{MaxResDefault, SDDefault, HQDefault, MQDefault, Default}

// Qualities returns every known quality, best first
func Qualities() []Quality {
	out := make([]Quality, len(qualities))
	copy(out, qualities)
	return out
}

// Known reports whether q is one of the known qualities
func (q Quality) Known() bool {
	for _, known := range qualities {
		if q == known {
			return true
		}
	}
	return false
}

// Normalize maps unknown qualities to MaxResDefault
func (q Quality) Normalize() Quality {
	if q.Known() {
		return q
	}
	return MaxResDefault
}

// RemoteURL builds the thumbnail URL of videoID at quality q under base
func RemoteURL(base, videoID string, q Quality) string {
	return strings.TrimSuffix(base, "/") + "/" + url.PathEscape(videoID) + "/" + string(q.Normalize()) + ".jpg"
}
