// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/edusphere/console/internal/app/system/auth"
	"github.com/edusphere/console/internal/app/system/authz"
	"github.com/edusphere/console/internal/domain/models"
	"github.com/gorilla/csrf"
)

// themeCookie stores the user's light/dark preference. Purely cosmetic, so
// a plain unencrypted cookie is fine.
const themeCookie = "theme_pref"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(w, r, sessionMgr, "Page Title", "/"),
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	Role       string // role code: SUPER_ADMIN, ORG_ADMIN, STAFF
	UserName   string
	UserOrg    string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string
	Theme       string // "light" or "dark"

	// CSRF protection
	CSRFToken string

	// One-shot notifications drained from the session
	Flashes []auth.Flash

	// Sidebar entries the current user may see
	Menu []authz.MenuItem
}

// NewBaseVM creates a fully populated BaseVM for a page. Draining flashes
// writes the session cookie, which is why it takes the ResponseWriter.
func NewBaseVM(w http.ResponseWriter, r *http.Request, mgr *auth.SessionManager, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:    models.DefaultSiteName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
		Theme:       themeFromRequest(r),
	}

	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.Role = u.RoleCode
		vm.UserName = u.Name
		vm.UserOrg = u.Organization
		vm.Menu = authz.MenuFor(u)
	}

	if mgr != nil {
		vm.Flashes = mgr.PopFlashes(w, r)
	}

	return vm
}

func themeFromRequest(r *http.Request) string {
	if c, err := r.Cookie(themeCookie); err == nil && c.Value == "dark" {
		return "dark"
	}
	return "light"
}

// SetTheme persists the theme preference for a year.
func SetTheme(w http.ResponseWriter, theme string) {
	if theme != "dark" {
		theme = "light"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    theme,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
}
