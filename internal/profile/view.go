package profile

import (
	"strings"

	"github.com/suPer8Hu/linkedcraft/internal/session"
)

// View is what the dashboard chrome shows for the signed-in user.
type View struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Initial     string `json:"initial"`
}

// BuildView applies the display fallbacks; p may be nil.
func BuildView(id session.Identity, p *Profile) View {
	name := ""
	avatar := ""
	if p != nil {
		if p.FullName != nil {
			name = strings.TrimSpace(*p.FullName)
		}
		if p.AvatarURL != nil {
			avatar = strings.TrimSpace(*p.AvatarURL)
		}
	}
	if name == "" {
		if local, _, _ := strings.Cut(id.Email, "@"); local != "" {
			name = local
		}
	}
	if name == "" {
		name = "User"
	}
	if avatar == "" {
		avatar = FallbackAvatar(name)
	}

	return View{
		ID:          id.ID,
		Email:       id.Email,
		DisplayName: name,
		AvatarURL:   avatar,
		Initial:     strings.ToUpper(string([]rune(name)[:1])),
	}
}

func FallbackAvatar(name string) string {
	if name == "" {
		name = "User"
	}
	return "https://ui-avatars.com/api/?name=" + escapeComponent(name) + "&background=1E3A8A&color=fff&size=256"
}

// escapeComponent escapes like JavaScript's encodeURIComponent: letters,
// digits and -_.!~*'() stay, every other byte is percent-encoded.
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isComponentSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isComponentSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
