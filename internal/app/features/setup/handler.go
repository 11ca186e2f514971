// internal/app/features/setup/handler.go
package setup

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/edusphere/console/internal/app/features/errors"
	"github.com/edusphere/console/internal/app/system/auditlog"
	"github.com/edusphere/console/internal/app/system/auth"
	"github.com/edusphere/console/internal/app/system/timeouts"
	"github.com/edusphere/console/internal/app/system/viewdata"
	"github.com/edusphere/console/internal/domain/models"
	"github.com/edusphere/console/internal/edusphere"
	"go.uber.org/zap"
)

// The wizard holds nothing server-side between steps: every value entered
// so far travels in hidden fields, and the single backend write happens on
// the final submit. Setup is write-once backend-side; a duplicate submit
// comes back as an error banner.
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

const (
	stepWelcome   = 1
	stepIdentity  = 2
	stepRole      = 3
	lastStep      = stepRole
	otherSentinel = "Other"
)

type wizardData struct {
	viewdata.BaseVM
	Step  int
	Error string

	// Collected values, echoed into hidden fields on later steps
	OrgName           string
	OrgType           string
	Address           string
	Designation       string
	CustomDesignation string

	OrgTypes     []string
	Designations []string
}

func (h *Handler) newWizardData(w http.ResponseWriter, r *http.Request, step int) wizardData {
	return wizardData{
		BaseVM:       viewdata.NewBaseVM(w, r, h.SessionMgr, "Set up your organization", "/"),
		Step:         step,
		OrgTypes:     models.OrgTypes,
		Designations: models.Designations,
	}
}

// ServeWizard handles GET /setup: always the welcome step.
func (h *Handler) ServeWizard(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "setup_wizard", h.newWizardData(w, r, stepWelcome))
}

// HandleStep handles POST /setup. The form carries the current step, the
// requested direction, and everything collected so far.
func (h *Handler) HandleStep(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	step, _ := strconv.Atoi(r.PostFormValue("step"))
	if step < stepWelcome || step > lastStep {
		step = stepWelcome
	}
	action := r.PostFormValue("action")

	data := h.newWizardData(w, r, step)
	data.OrgName = strings.TrimSpace(r.PostFormValue("org_name"))
	data.OrgType = r.PostFormValue("org_type")
	data.Address = strings.TrimSpace(r.PostFormValue("address"))
	data.Designation = r.PostFormValue("designation")
	data.CustomDesignation = strings.TrimSpace(r.PostFormValue("custom_designation"))

	if action == "back" {
		if data.Step > stepWelcome {
			data.Step--
		}
		templates.Render(w, r, "setup_wizard", data)
		return
	}

	// Advancing: validate the step just filled in.
	switch step {
	case stepWelcome:
		data.Step = stepIdentity

	case stepIdentity:
		if data.OrgName == "" {
			data.Error = "Please enter your institution's name."
		} else if !models.ValidOrgType(data.OrgType) {
			data.Error = "Please choose an institution type."
		} else {
			data.Step = stepRole
		}

	case stepRole:
		designation := data.Designation
		if designation == otherSentinel {
			designation = data.CustomDesignation
		}
		if designation == "" {
			data.Error = "Please tell us your role."
			break
		}
		h.submit(w, r, data, designation)
		return
	}

	templates.Render(w, r, "setup_wizard", data)
}

// submit performs the one backend write of the wizard.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request, data wizardData, designation string) {
	sess, err := h.SessionMgr.GetSession(r)
	if err != nil {
		h.Log.Warn("session decode failed during setup", zap.Error(err))
	}
	tokens := auth.NewSessionTokens(sess)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	setup := models.OrganizationSetup{
		Name:        data.OrgName,
		Type:        data.OrgType,
		Address:     data.Address,
		Designation: designation,
	}
	if err := h.SessionMgr.API().Bind(tokens).SetupOrganization(ctx, setup); err != nil {
		h.ErrLog.LogError(r, "organization setup failed", err)
		if tokens.Dirty() {
			_ = sess.Save(r, w)
		}
		data.Error = edusphere.ErrorMessage(err, "Could not save your organization. Please try again.")
		templates.Render(w, r, "setup_wizard", data)
		return
	}

	if tokens.Dirty() {
		if err := sess.Save(r, w); err != nil {
			h.Log.Error("save session after setup", zap.Error(err))
		}
	}

	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.SetupCompleted(r.Context(), r, u.ID, data.OrgName)
	}

	// The next request refetches the profile and sees is_setup_complete.
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
