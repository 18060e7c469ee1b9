package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/companyhub/internal/common"
	"github.com/dmitrijs2005/companyhub/internal/server/models"
	"github.com/dmitrijs2005/companyhub/internal/server/services"
	"github.com/gorilla/mux"
)

type createCompanyRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Address  *string `json:"address" validate:"omitempty,max=255"`
	Industry *string `json:"industry" validate:"omitempty,max=100"`
}

type updateCompanyRequest struct {
	Name     optionalString `json:"name"`
	Address  optionalString `json:"address"`
	Industry optionalString `json:"industry"`
}

type companyResponse struct {
	Message string          `json:"message"`
	Company *models.Company `json:"company"`
}

type companiesResponse struct {
	Message   string            `json:"message"`
	Companies []*models.Company `json:"companies"`
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	list, err := s.companies.List(r.Context(), id.UserID)
	if err != nil {
		s.serverError(w, r, "Failed to retrieve companies", err)
		return
	}
	if list == nil {
		list = []*models.Company{}
	}

	writeJSON(w, http.StatusOK, companiesResponse{Message: "Companies retrieved successfully", Companies: list})
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	var req createCompanyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationErrors(w, bodyErrors(err))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Address = nullableTrimmed(req.Address)
	req.Industry = nullableTrimmed(req.Industry)

	if errs := validateStruct(req); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	company, err := s.companies.Create(r.Context(), id.UserID, services.CompanyInput{
		Name:     req.Name,
		Address:  req.Address,
		Industry: req.Industry,
	})
	if err != nil {
		s.serverError(w, r, "Failed to create company", err)
		return
	}

	writeJSON(w, http.StatusCreated, companyResponse{Message: "Company created successfully", Company: company})
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	company, err := s.companies.Get(r.Context(), id.UserID, mux.Vars(r)["id"])
	if err != nil {
		s.companyError(w, r, "Failed to retrieve company", err)
		return
	}

	writeJSON(w, http.StatusOK, companyResponse{Message: "Company retrieved successfully", Company: company})
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	var req updateCompanyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationErrors(w, bodyErrors(err))
		return
	}

	patch, errs := req.patch()
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	company, err := s.companies.Update(r.Context(), id.UserID, mux.Vars(r)["id"], patch)
	if err != nil {
		s.companyError(w, r, "Failed to update company", err)
		return
	}

	writeJSON(w, http.StatusOK, companyResponse{Message: "Company updated successfully", Company: company})
}

// patch validates the fields that are present and converts them into a
// models.CompanyPatch. Absent fields are left untouched; address and industry
// may be cleared with null.
func (req updateCompanyRequest) patch() (models.CompanyPatch, fieldErrors) {
	var patch models.CompanyPatch
	errs := fieldErrors{}

	if req.Name.Set {
		name := ""
		if req.Name.Value != nil {
			name = strings.TrimSpace(*req.Name.Value)
		}
		validateVar(errs, "name", name, "required,max=255")
		patch.Name = &name
	}
	if req.Address.Set {
		patch.SetAddress = true
		patch.Address = nullableTrimmed(req.Address.Value)
		if patch.Address != nil {
			validateVar(errs, "address", *patch.Address, "max=255")
		}
	}
	if req.Industry.Set {
		patch.SetIndustry = true
		patch.Industry = nullableTrimmed(req.Industry.Value)
		if patch.Industry != nil {
			validateVar(errs, "industry", *patch.Industry, "max=100")
		}
	}

	return patch, errs
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	if err := s.companies.Delete(r.Context(), id.UserID, mux.Vars(r)["id"]); err != nil {
		s.companyError(w, r, "Failed to delete company", err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Company deleted successfully"})
}

func (s *Server) handleSetActiveCompany(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	company, err := s.companies.SetActive(r.Context(), id.UserID, mux.Vars(r)["id"])
	if err != nil {
		s.companyError(w, r, "Failed to set active company", err)
		return
	}

	writeJSON(w, http.StatusOK, companyResponse{Message: "Active company set successfully", Company: company})
}

func (s *Server) handleCurrentCompany(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	company, err := s.companies.Current(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNoActiveCompany) {
			writeError(w, http.StatusNotFound, "No active company set")
			return
		}
		s.serverError(w, r, "Failed to retrieve active company", err)
		return
	}

	writeJSON(w, http.StatusOK, companyResponse{Message: "Active company retrieved successfully", Company: company})
}

// companyError answers 404 for missing or foreign companies and 500 otherwise.
func (s *Server) companyError(w http.ResponseWriter, r *http.Request, message string, err error) {
	if errors.Is(err, common.ErrorNotFound) {
		writeError(w, http.StatusNotFound, "Company not found")
		return
	}
	s.serverError(w, r, message, err)
}
