package window

import "strings"

// HostOption is one entry of a host list.
type HostOption struct {
	Value string
	Label string
}

// ParseHosts splits "host[=description],..." into options. An empty host
// stands for def. The first entry is the selected one.
func ParseHosts(s, def string) (opts []HostOption, selected string) {
	if s == "" {
		return nil, ""
	}
	for i, item := range strings.Split(s, ",") {
		value, label, found := strings.Cut(item, "=")
		if value == "" {
			value = def
		}
		if !found {
			label = value
		}
		opts = append(opts, HostOption{Value: value, Label: label})
		if i == 0 {
			selected = value
		}
	}
	return opts, selected
}

// ParseSizes splits a comma list of WxH strings, skipping empty items. The
// first item is selected only when it is not empty.
func ParseSizes(s string) (sizes []string, selected string) {
	for i, item := range strings.Split(s, ",") {
		if item == "" {
			continue
		}
		sizes = append(sizes, item)
		if i == 0 {
			selected = item
		}
	}
	return sizes, selected
}
