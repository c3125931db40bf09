package api

import (
	"net/http"

	"promo-platform/internal/domain/model"
)

type userTargetDTO struct {
	Age     *int   `json:"age"`
	Country string `json:"country"`
}

type userSignUpRequest struct {
	Name      string        `json:"name"`
	Surname   string        `json:"surname"`
	Email     string        `json:"email"`
	AvatarURL *string       `json:"avatar_url"`
	Other     userTargetDTO `json:"other"`
	Password  string        `json:"password"`
}

func (r userSignUpRequest) toModel() (*model.User, error) {
	if r.Other.Age == nil {
		return nil, badRequest("other.age is required")
	}
	u, err := model.NewUser("", r.Name, r.Surname, r.Email, *r.Other.Age, r.Other.Country)
	if err != nil {
		return nil, err
	}
	if r.AvatarURL != nil {
		return model.UserPatch{AvatarURL: model.SetTo(*r.AvatarURL)}.Apply(u)
	}
	return u, nil
}

type companySignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	CompanyID string `json:"company_id,omitempty"`
}

type profileDTO struct {
	Name      string        `json:"name"`
	Surname   string        `json:"surname"`
	Email     string        `json:"email"`
	AvatarURL *string       `json:"avatar_url,omitempty"`
	Other     userTargetDTO `json:"other"`
}

func toProfileDTO(u *model.User) profileDTO {
	age := u.Age
	return profileDTO{
		Name:      u.Name,
		Surname:   u.Surname,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Other:     userTargetDTO{Age: &age, Country: u.Country},
	}
}

type profilePatchRequest struct {
	Name      *string          `json:"name"`
	Surname   *string          `json:"surname"`
	Email     *string          `json:"email"`
	AvatarURL optional[string] `json:"avatar_url"`
	Password  *string          `json:"password"`
}

func (r profilePatchRequest) toModel() model.UserPatch {
	return model.UserPatch{
		Name:      r.Name,
		Surname:   r.Surname,
		Email:     r.Email,
		AvatarURL: model.Nullable[string]{Set: r.AvatarURL.set, Value: r.AvatarURL.value},
		Password:  r.Password,
	}
}

// ----- sign-up / sign-in -----

func (s *Server) userSignUp(w http.ResponseWriter, r *http.Request) {
	var req userSignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	u, err := req.toModel()
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	token, err := s.deps.Auth.SignUpUser(r.Context(), u, req.Password)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) companySignUp(w http.ResponseWriter, r *http.Request) {
	var req companySignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	c, err := model.NewCompany("", req.Name, req.Email)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	token, err := s.deps.Auth.SignUpCompany(r.Context(), c, req.Password)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, CompanyID: c.ID})
}

func (s *Server) signIn(kind model.PrincipalKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signInRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, s.log, err)
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, r, s.log, badRequest("email and password are required"))
			return
		}
		p, token, err := s.deps.Auth.SignIn(r.Context(), kind, req.Email, req.Password)
		if err != nil {
			writeError(w, r, s.log, err)
			return
		}
		resp := tokenResponse{Token: token}
		if kind == model.PrincipalCompany {
			resp.CompanyID = p.ID
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ----- profile -----

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.deps.Profile.Get(r.Context(), principalFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(u))
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profilePatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	u, err := s.deps.Profile.Update(r.Context(), principalFrom(r.Context()).ID, req.toModel())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(u))
}
