// internal/app/features/staff/handler.go
package staff

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/gorilla/sessions"

	uierrors "github.com/edusphere/console/internal/app/features/errors"
	"github.com/edusphere/console/internal/app/system/auditlog"
	"github.com/edusphere/console/internal/app/system/auth"
	"github.com/edusphere/console/internal/app/system/authz"
	"github.com/edusphere/console/internal/app/system/htmlsanitize"
	"github.com/edusphere/console/internal/app/system/inputval"
	"github.com/edusphere/console/internal/app/system/timeouts"
	"github.com/edusphere/console/internal/app/system/viewdata"
	"github.com/edusphere/console/internal/domain/models"
	"github.com/edusphere/console/internal/edusphere"
	"go.uber.org/zap"
)

// The staff page is a thin projection of GET /api/staff/: every mutation
// posts, redirects back here, and the redisplay refetches the
// authoritative list. A failed permission save is therefore reconciled by
// refetch, not by rolling back anything local.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| View models                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

type toggleVM struct {
	Key     string
	Label   string
	Checked bool
}

type memberRow struct {
	models.StaffMember
	CanEdit   bool
	CanDelete bool
	Toggles   []toggleVM
}

type listPageData struct {
	viewdata.BaseVM
	Members       []memberRow
	Error         string
	ConfirmDelete *memberRow // non-nil when a delete is pending confirmation
	Roles         []string
}

func buildRows(members []models.StaffMember) []memberRow {
	rows := make([]memberRow, 0, len(members))
	for _, m := range members {
		row := memberRow{
			StaffMember: m,
			CanEdit:     authz.CanEditPermissions(m),
			CanDelete:   authz.CanDeleteMember(m),
		}
		for _, f := range models.FeatureFlags {
			row.Toggles = append(row.Toggles, toggleVM{
				Key:     f.Key,
				Label:   f.Label,
				Checked: m.HasPermission(f.Key),
			})
		}
		rows = append(rows, row)
	}
	return rows
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /staff                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	b := h.bind(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	members, err := b.api.ListStaff(ctx)
	h.saveIfDirty(w, r, b)

	data := listPageData{
		BaseVM: viewdata.NewBaseVM(w, r, h.SessionMgr, "Staff", "/"),
		Roles:  []string{models.RoleStaff, models.RoleOrgAdmin},
	}

	if err != nil {
		var apiErr *edusphere.APIError
		if errors.As(err, &apiErr) && apiErr.IsForbidden() {
			// Not an admin as far as the backend is concerned; the page
			// simply isn't theirs.
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.ErrLog.LogError(r, "list staff", err)
		data.Error = edusphere.ErrorMessage(err, "Could not load your staff list.")
		templates.Render(w, r, "staff_list", data)
		return
	}

	data.Members = buildRows(members)

	// ?delete=<id> arms the confirmation step for that member.
	if idStr := query.Get(r, "delete"); idStr != "" {
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			for i := range data.Members {
				if data.Members[i].ID == id && data.Members[i].CanDelete {
					data.ConfirmDelete = &data.Members[i]
				}
			}
		}
	}

	templates.Render(w, r, "staff_list", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /staff/invite                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	role := r.PostFormValue("role")
	if role != models.RoleOrgAdmin {
		role = models.RoleStaff
	}

	// Shape check happens before any network traffic.
	if !inputval.ValidEmail(email) {
		h.SessionMgr.AddFlash(w, r, "error", "Please enter a valid email address.")
		http.Redirect(w, r, "/staff", http.StatusSeeOther)
		return
	}

	b := h.bind(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := b.api.InviteStaff(ctx, email, role)
	h.saveIfDirty(w, r, b)

	if err != nil {
		h.ErrLog.LogError(r, "invite staff", err)
		// The backend's message is shown verbatim (sanitized); it explains
		// duplicates, quota, and the rest better than a generic line.
		msg := htmlsanitize.Plain(edusphere.ErrorMessage(err, "Could not send the invitation."))
		h.SessionMgr.AddFlash(w, r, "error", msg)
		http.Redirect(w, r, "/staff", http.StatusSeeOther)
		return
	}

	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.StaffInvited(r.Context(), r, u.ID, email, role)
	}
	h.SessionMgr.AddFlash(w, r, "success", fmt.Sprintf("Invitation sent to %s!", email))
	http.Redirect(w, r, "/staff", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /staff/permissions                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleToggle flips one permission flag. The form carries the member's
// whole mapping as hidden fields; the PATCH always sends the full map, with
// the named flag flipped.
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	userID, err := strconv.ParseInt(r.PostFormValue("user_id"), 10, 64)
	if err != nil {
		http.Error(w, "bad user id", http.StatusBadRequest)
		return
	}
	flag := r.PostFormValue("flag")

	perms := make(map[string]bool, len(models.FeatureFlags))
	known := false
	for _, f := range models.FeatureFlags {
		perms[f.Key] = r.PostFormValue("perm_"+f.Key) == "1"
		if f.Key == flag {
			known = true
		}
	}
	if !known {
		http.Error(w, "unknown permission", http.StatusBadRequest)
		return
	}
	perms[flag] = !perms[flag]

	b := h.bind(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err = b.api.UpdateStaffPermissions(ctx, userID, perms)
	h.saveIfDirty(w, r, b)

	if err != nil {
		h.ErrLog.LogError(r, "update staff permissions", err)
		h.SessionMgr.AddFlash(w, r, "error", "Failed to save permission")
	} else if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.StaffPermissionsUpdated(r.Context(), r, u.ID, userID, flag, perms[flag])
	}

	// Either way the redisplay refetches the authoritative list.
	http.Redirect(w, r, "/staff", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /staff/delete                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	userID, err := strconv.ParseInt(r.PostFormValue("user_id"), 10, 64)
	if err != nil {
		http.Error(w, "bad user id", http.StatusBadRequest)
		return
	}

	b := h.bind(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err = b.api.DeleteStaff(ctx, userID)
	h.saveIfDirty(w, r, b)

	if err != nil {
		h.ErrLog.LogError(r, "delete staff", err)
		msg := htmlsanitize.Plain(edusphere.ErrorMessage(err, "Could not remove the staff member."))
		h.SessionMgr.AddFlash(w, r, "error", msg)
	} else {
		if u, ok := auth.CurrentUser(r); ok {
			h.AuditLog.StaffDeleted(r.Context(), r, u.ID, userID)
		}
		h.SessionMgr.AddFlash(w, r, "success", "Staff member removed.")
	}

	http.Redirect(w, r, "/staff", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Plumbing                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type binding struct {
	sess   *sessions.Session
	tokens *auth.SessionTokens
	api    *edusphere.Session
}

func (h *Handler) bind(r *http.Request) binding {
	sess, err := h.SessionMgr.GetSession(r)
	if err != nil {
		h.Log.Warn("session decode failed on staff page", zap.Error(err))
	}
	tokens := auth.NewSessionTokens(sess)
	return binding{sess: sess, tokens: tokens, api: h.SessionMgr.API().Bind(tokens)}
}

// saveIfDirty persists the session when a mid-call refresh rotated the
// access token (or tore the session down).
func (h *Handler) saveIfDirty(w http.ResponseWriter, r *http.Request, b binding) {
	if !b.tokens.Dirty() {
		return
	}
	if err := b.sess.Save(r, w); err != nil {
		h.Log.Error("save session after staff call", zap.Error(err))
	}
}
