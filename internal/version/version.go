package version

// AppVersion is the client version shown in the status bar vanity label.
const AppVersion = "v1.1.1"

// Product is the product tag carried inside every sideband marker.
const Product = "DCLinabox"

// Compatible lists the executable versions this client works with.
var Compatible = []string{"1.1.0", "1.1.1"}

// IsCompatible reports whether the peer version v is in Compatible.
func IsCompatible(v string) bool {
	for _, c := range Compatible {
		if c == v {
			return true
		}
	}
	return false
}
