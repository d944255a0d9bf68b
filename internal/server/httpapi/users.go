package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/hisabkitab/internal/common"
	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
	"github.com/dmitrijs2005/hisabkitab/internal/server/services"
)

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	c := &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if s.cookieSecure {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, c)
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	c := &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		SameSite: http.SameSiteLaxMode,
	}
	if s.cookieSecure {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, c)
}

type registrationRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type otpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Status string         `json:"status"`
	User   models.Profile `json:"user"`
}

func (s *Server) sendRegistrationOTP(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondOTPError(w, r, err)
		return
	}

	if err := s.svc.Users.SendRegistrationOTP(r.Context(), req.Name, req.Email, req.Password); err != nil {
		s.respondOTPError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, otpBody{Success: true, Message: "OTP sent to email"})
}

func (s *Server) verifyOTPAndRegister(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondOTPError(w, r, err)
		return
	}

	user, token, err := s.svc.Users.CompleteRegistration(r.Context(), req.Email, req.OTP)
	if err != nil {
		s.respondOTPError(w, r, err)
		return
	}

	s.setSessionCookie(w, token)
	respondJSON(w, http.StatusOK, sessionResponse{Status: "registered and logged in", User: user.Profile()})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	user, token, err := s.svc.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrAccountNotVerified) {
			respondJSON(w, http.StatusForbidden, errorBody{Error: "Please verify your email before logging in."})
			return
		}
		s.respondError(w, r, err)
		return
	}

	s.setSessionCookie(w, token)
	respondJSON(w, http.StatusOK, sessionResponse{Status: "pass ok", User: user.Profile()})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.Users.GetProfile(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user.Profile())
}

const uploadField = "profileImage"

func (s *Server) uploadProfileImage(w http.ResponseWriter, r *http.Request) {
	// room for the multipart envelope around the file
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+(1<<20))

	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("%w: upload exceeds %d bytes", common.ErrorTooLarge, s.maxUpload))
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", common.ErrorValidation, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: no file uploaded", common.ErrorValidation))
		return
	}
	defer file.Close()

	// trust the bytes, not the client's Content-Type
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		s.respondError(w, r, err)
		return
	}
	head = head[:n]

	url, user, err := s.svc.ProfileImages.Upload(r.Context(), currentUser(r).ID, services.ProfileImage{
		Filename:    header.Filename,
		ContentType: http.DetectContentType(head),
		Size:        header.Size,
		Body:        io.MultiReader(bytes.NewReader(head), file),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Image uploaded",
		"url":     url,
		"user":    user.Profile(),
	})
}

type resetRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
	Password    string `json:"password"`
}

func (s *Server) sendResetOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondOTPError(w, r, err)
		return
	}

	if err := s.svc.PasswordReset.SendOTP(r.Context(), req.Email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondJSON(w, http.StatusNotFound, otpBody{Message: "User not found"})
			return
		}
		s.respondOTPError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, otpBody{Success: true, Message: "OTP sent successfully"})
}

func (s *Server) verifyResetOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondOTPError(w, r, err)
		return
	}

	if err := s.svc.PasswordReset.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		s.respondOTPError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, otpBody{Success: true, Message: "OTP verified"})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondOTPError(w, r, err)
		return
	}

	password := req.NewPassword
	if password == "" {
		password = req.Password
	}

	if err := s.svc.PasswordReset.Reset(r.Context(), req.Email, req.OTP, password); err != nil {
		s.respondOTPError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, otpBody{Success: true, Message: "Password reset successful"})
}
