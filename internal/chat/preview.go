// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"net/url"
	"regexp"
	"strings"
)

var htmlFence = regexp.MustCompile("(?s)```(?:html|HTML)\\s*\n(.*?)```")

// ExtractPreview finds previewable output in an assistant reply: the first
// fenced html block, else the first line that is an absolute http(s) URL.
func ExtractPreview(content string) (string, bool) {
	if m := htmlFence.FindStringSubmatch(content); m != nil {
		if body := strings.TrimSpace(m[1]); body != "" {
			return body, true
		}
	}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "http://") && !strings.HasPrefix(line, "https://") {
			continue
		}
		if u, err := url.Parse(line); err == nil && u.Host != "" {
			return line, true
		}
	}
	return "", false
}
