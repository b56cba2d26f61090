package auth

import (
	"log"
	"net/http"

	"agroadmin/forms"
	"agroadmin/session"
	"agroadmin/utils"

	"github.com/julienschmidt/httprouter"
)

func badBody(w http.ResponseWriter) {
	utils.RespondWithError(w, http.StatusBadRequest, "validation", "Invalid request body", "none")
}

func (s *Service) HandleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var f forms.LoginForm
	if err := utils.DecodeJSON(r, &f); err != nil {
		badBody(w)
		return
	}
	res, errs, err := s.Login(r.Context(), f)
	switch {
	case err != nil:
		utils.RespondWithFailure(w, err)
	case !errs.Valid():
		utils.RespondWithFieldErrors(w, errs)
	default:
		log.Printf("[auth] %s signed in (admin=%t)", f.Email, res.IsAdmin)
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"success":  true,
			"token":    res.Token,
			"userId":   res.UserID,
			"isAdmin":  res.IsAdmin,
			"redirect": res.Redirect,
		})
	}
}

func (s *Service) HandleSignup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var f forms.SignupForm
	if err := utils.DecodeJSON(r, &f); err != nil {
		badBody(w)
		return
	}
	errs, err := s.Signup(r.Context(), f)
	switch {
	case err != nil:
		utils.RespondWithFailure(w, err)
	case !errs.Valid():
		utils.RespondWithFieldErrors(w, errs)
	default:
		utils.RespondWithJSON(w, http.StatusCreated, utils.M{
			"success":  true,
			"message":  "Signup Successful! Please login to continue.",
			"redirect": "/login",
		})
	}
}

func (s *Service) HandleRequestOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var f forms.OTPRequestForm
	if err := utils.DecodeJSON(r, &f); err != nil {
		badBody(w)
		return
	}
	msg, errs, err := s.RequestOTP(r.Context(), f)
	respondStep(w, msg, StepOTP, errs, err)
}

func (s *Service) HandleVerifyOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var f forms.OTPVerifyForm
	if err := utils.DecodeJSON(r, &f); err != nil {
		badBody(w)
		return
	}
	msg, errs, err := s.VerifyOTP(r.Context(), f)
	respondStep(w, msg, StepReset, errs, err)
}

func (s *Service) HandleResetPassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var f forms.ResetForm
	if err := utils.DecodeJSON(r, &f); err != nil {
		badBody(w)
		return
	}
	msg, errs, err := s.ResetPassword(r.Context(), f)
	respondStep(w, msg, StepDone, errs, err)
}

// respondStep answers a recovery call with the step the flow moves to.
func respondStep(w http.ResponseWriter, msg, next string, errs forms.Errors, err error) {
	switch {
	case err != nil:
		utils.RespondWithFailure(w, err)
	case !errs.Valid():
		utils.RespondWithFieldErrors(w, errs)
	default:
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": msg, "step": next})
	}
}

func (s *Service) HandleProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session.FromContext(r.Context())
	name, err := s.Profile(r.Context(), sess)
	if err != nil {
		utils.RespondWithFailure(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"fullName": name, "email": sess.Email, "isAdmin": sess.IsAdmin})
}

func (s *Service) HandleLogout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session.FromContext(r.Context())
	if err := s.Logout(r.Context(), sess); err != nil {
		log.Printf("[auth] logout: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "server", "Failed to log out", "retry")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "User logged out successfully", "redirect": "/login"})
}
