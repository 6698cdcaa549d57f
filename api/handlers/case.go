package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/lokmitra/case-api/cases"
	"github.com/lokmitra/case-api/config"
	"github.com/lokmitra/case-api/databases"
	"github.com/lokmitra/case-api/media"
	"github.com/lokmitra/case-api/models"
)

// Case handles case-related requests
type Case struct {
	Engine         *cases.Engine
	Media          media.Store
	MaxUploadBytes int64
}

// SubmitCaseHandler creates a new case from a citizen's multipart submission
func (c Case) SubmitCaseHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(c.MaxUploadBytes); err != nil {
		config.ErrorStatus("invalid multipart form", http.StatusBadRequest, w, err)
		return
	}

	form := r.MultipartForm
	proofs := form.File["proofs"]
	voice := form.File["voice"]
	video := form.File["video"]

	if len(proofs) > cases.MaxProofFiles {
		config.ErrorStatus("at most 10 proof files are allowed", http.StatusBadRequest, w, nil)
		return
	}
	if len(voice) > 1 || len(video) > 1 {
		config.ErrorStatus("at most one voice and one video file are allowed", http.StatusBadRequest, w, nil)
		return
	}

	proofRefs, err := c.storeAll(r, proofs)
	if err != nil {
		config.ErrorStatus("failed to store attachment", http.StatusInternalServerError, w, err)
		return
	}
	voiceRef, err := c.storeFirst(r, voice)
	if err != nil {
		config.ErrorStatus("failed to store attachment", http.StatusInternalServerError, w, err)
		return
	}
	videoRef, err := c.storeFirst(r, video)
	if err != nil {
		config.ErrorStatus("failed to store attachment", http.StatusInternalServerError, w, err)
		return
	}

	created, err := c.Engine.SubmitCase(r.Context(), cases.SubmitCaseInput{
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
		Language:    r.FormValue("language"),
		Location:    r.FormValue("location"),
		Name:        r.FormValue("name"),
		Mobile:      r.FormValue("mobile"),
		Proofs:      proofRefs,
		Voice:       voiceRef,
		Video:       videoRef,
	})
	if err != nil {
		writeEngineError("failed to submit case", w, err)
		return
	}

	writeCaseEnvelope(w, http.StatusCreated, created)
}

// GetCasesHandler returns all cases in insertion order
func (c Case) GetCasesHandler(w http.ResponseWriter, r *http.Request) {
	dbResp, err := c.Engine.ListCases(r.Context())
	if err != nil {
		config.ErrorStatus("failed to get cases", http.StatusInternalServerError, w, err)
		return
	}

	if len(dbResp) == 0 {
		dbResp = []models.Case{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// GetCaseHandler returns a single case by id
func (c Case) GetCaseHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		config.ErrorStatus("id is required", http.StatusBadRequest, w, nil)
		return
	}

	dbResp, err := c.Engine.GetCase(r.Context(), id)
	if err != nil {
		writeEngineError("failed to get case", w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AcceptCaseHandler records a student accepting a case
func (c Case) AcceptCaseHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID          string `json:"id"`
		StudentName string `json:"studentName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	accepted, err := c.Engine.AcceptCase(r.Context(), body.ID, body.StudentName)
	if err != nil {
		writeEngineError("failed to accept case", w, err)
		return
	}

	writeCaseEnvelope(w, http.StatusOK, accepted)
}

// SubmitSolutionHandler records a student's solution for a case
func (c Case) SubmitSolutionHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(c.MaxUploadBytes); err != nil {
		config.ErrorStatus("invalid multipart form", http.StatusBadRequest, w, err)
		return
	}

	form := r.MultipartForm
	files := form.File["solutionFiles"]
	voice := form.File["solutionVoice"]
	video := form.File["solutionVideo"]

	if len(files) > cases.MaxSolutionFiles {
		config.ErrorStatus("at most 10 solution files are allowed", http.StatusBadRequest, w, nil)
		return
	}
	if len(voice) > 1 || len(video) > 1 {
		config.ErrorStatus("at most one voice and one video file are allowed", http.StatusBadRequest, w, nil)
		return
	}

	fileRefs, err := c.storeAll(r, files)
	if err != nil {
		config.ErrorStatus("failed to store attachment", http.StatusInternalServerError, w, err)
		return
	}
	voiceRef, err := c.storeFirst(r, voice)
	if err != nil {
		config.ErrorStatus("failed to store attachment", http.StatusInternalServerError, w, err)
		return
	}
	videoRef, err := c.storeFirst(r, video)
	if err != nil {
		config.ErrorStatus("failed to store attachment", http.StatusInternalServerError, w, err)
		return
	}

	solved, err := c.Engine.SubmitSolution(r.Context(), cases.SubmitSolutionInput{
		ID:           r.FormValue("id"),
		StudentName:  r.FormValue("studentName"),
		SolutionText: r.FormValue("solutionText"),
		DocsNeeded:   r.FormValue("docsNeeded"),
		Files:        fileRefs,
		Voice:        voiceRef,
		Video:        videoRef,
	})
	if err != nil {
		writeEngineError("failed to submit solution", w, err)
		return
	}

	writeCaseEnvelope(w, http.StatusOK, solved)
}

func (c Case) storeAll(r *http.Request, fhs []*multipart.FileHeader) ([]string, error) {
	refs := make([]string, 0, len(fhs))
	for _, fh := range fhs {
		ref, err := c.Media.Save(r.Context(), fh)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (c Case) storeFirst(r *http.Request, fhs []*multipart.FileHeader) (*string, error) {
	if len(fhs) == 0 {
		return nil, nil
	}
	ref, err := c.Media.Save(r.Context(), fhs[0])
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func writeCaseEnvelope(w http.ResponseWriter, status int, c *models.Case) {
	b, err := json.Marshal(models.CaseResponse{Success: true, CaseData: c})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

// writeEngineError maps lifecycle errors onto the failure envelope
func writeEngineError(fallback string, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cases.ErrValidation):
		config.ErrorStatus(err.Error(), http.StatusBadRequest, w, err)
	case errors.Is(err, databases.ErrCaseNotFound):
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
	case errors.Is(err, cases.ErrInvalidTransition):
		config.ErrorStatus(err.Error(), http.StatusConflict, w, err)
	default:
		config.ErrorStatus(fallback, http.StatusInternalServerError, w, err)
	}
}
