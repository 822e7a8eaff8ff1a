package media

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GravatarURL is the fallback avatar for users who never uploaded one.
func GravatarURL(email string, size int) string {
	if size <= 0 {
		size = AvatarSize
	}
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=mp", hash, size)
}

// AvatarURLFor returns the stored avatar or the Gravatar fallback.
func AvatarURLFor(avatarURL, email string) string {
	if avatarURL != "" {
		return avatarURL
	}
	return GravatarURL(email, AvatarSize)
}
