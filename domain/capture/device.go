package capture

import (
	"strconv"
	"strings"
)

// parseDeviceIndex turns "0", "1", ... into a camera index.
func parseDeviceIndex(device string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(device))
}
