package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"pixelplates.org/internal/audit"
	"pixelplates.org/internal/auth"
	"pixelplates.org/internal/generate"
	"pixelplates.org/internal/obs"
	"pixelplates.org/internal/script"
	"pixelplates.org/internal/upload"
)

const (
	historyDefaultLimit = 50
	historyMaxLimit     = 200

	multipartMemory = 4 << 20
)

// handleGenerate runs one prompt through the generation collaborator and
// persists the result under the caller's ownership. Persistence is
// best-effort: a storage failure is logged and the generated script is
// still returned to the caller.
func (a *API) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondUnauthorized(w, r)
		return
	}

	// The front-end submits multipart (prompt + optional upload); the API is
	// also usable with a plain urlencoded form.
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, r, http.StatusBadRequest, "malformed form body")
		return
	}

	prompt := strings.TrimSpace(r.FormValue("prompt"))
	promptFile := strings.TrimSpace(r.FormValue("prompt_file"))

	systemPrompt, err := a.prompts.Load(promptFile)
	if err != nil {
		if errors.Is(err, generate.ErrTemplateNotFound) {
			writeError(w, r, http.StatusNotFound, "prompt template not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	var (
		reference      string
		inputFilename  string
		generationType = script.GenerationStandard
	)
	file, header, ferr := r.FormFile("file")
	switch {
	case errors.Is(ferr, http.ErrMissingFile), errors.Is(ferr, http.ErrNotMultipart):
		// No upload attached.
	case ferr != nil:
		writeError(w, r, http.StatusBadRequest, "malformed file upload")
		return
	default:
		defer file.Close()
		reference, err = upload.Extract(header.Filename, file)
		if err != nil {
			if errors.Is(err, upload.ErrUnsupportedType) {
				writeError(w, r, http.StatusBadRequest, "upload a .txt, .md or .pdf file")
				return
			}
			writeError(w, r, http.StatusInternalServerError, "internal error")
			return
		}
		inputFilename = header.Filename
		generationType = script.GenerationRAG
	}

	if prompt == "" && reference == "" {
		writeError(w, r, http.StatusBadRequest, "prompt or reference file is required")
		return
	}
	if prompt == "" {
		prompt = "Create a script from the attached reference material"
	}

	start := time.Now()
	result, err := a.generator.Generate(r.Context(), generate.Request{
		Prompt:       prompt,
		SystemPrompt: systemPrompt,
		Reference:    reference,
	})
	if err != nil {
		obs.ObserveGeneration("error", time.Since(start))
		writeError(w, r, http.StatusInternalServerError, "script generation failed")
		return
	}
	obs.ObserveGeneration("ok", time.Since(start))

	sc := &script.Script{
		Title:          result.Title,
		Prompt:         prompt,
		PromptFile:     promptFile,
		InputFilename:  inputFilename,
		Content:        result.Content,
		GenerationType: generationType,
		// Owner comes from the resolved principal, never from the form.
		OwnerID: user.ID,
	}
	if err := a.scripts.Create(r.Context(), sc); err != nil {
		_ = audit.LogEvent(r.Context(), "script.persist_failed", map[string]any{
			"title": result.Title,
			"error": err.Error(),
		})
	} else {
		_ = audit.LogEvent(r.Context(), "script.generate", map[string]any{
			"script_id":       sc.ID,
			"title":           sc.Title,
			"generation_type": sc.GenerationType,
		})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Content)
}

// handleHistory lists the caller's own scripts, newest first.
func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondUnauthorized(w, r)
		return
	}

	limit, err := parsePositiveInt(r.URL.Query().Get("limit"), historyDefaultLimit, 1, historyMaxLimit)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	items, err := a.scripts.ListByOwner(r.Context(), user.ID, limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handlePrompts lists available system-prompt template names.
func (a *API) handlePrompts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	names, err := a.prompts.List()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prompts": names})
}
