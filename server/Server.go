package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/CorruptResonant/gitsec-scanner/core"
	"github.com/CorruptResonant/gitsec-scanner/detectors"
	"github.com/CorruptResonant/gitsec-scanner/explain"
	"github.com/CorruptResonant/gitsec-scanner/scanners"
	"github.com/CorruptResonant/gitsec-scanner/trust"
	"github.com/CorruptResonant/gitsec-scanner/utils"
)

const githubURLPrefix = "https://github.com/"

// Server is the HTTP façade over the scanner, the trust scorer and the
// explanation client.
type Server struct {
	MaxFileSize  int64
	CloneBaseDir string
	fileScanner  scanners.FsFileScanner
	trustScorer  *trust.Scorer
	explainer    *explain.Client
}

func New(processors []core.FileProcessor, excludeGlobs []string, maxFileSize int64, cloneBaseDir string, trustScorer *trust.Scorer, explainer *explain.Client) *Server {
	return &Server{
		MaxFileSize:  maxFileSize,
		CloneBaseDir: cloneBaseDir,
		fileScanner:  scanners.NewFsFileScanner(processors, excludeGlobs),
		trustScorer:  trustScorer,
		explainer:    explainer,
	}
}

type repoRequest struct {
	URL string `json:"url"`
}

type explainRequest struct {
	Code  string `json:"code"`
	Issue string `json:"issue"`
}

type analyzeFileResponse struct {
	Issues []core.Finding `json:"issues"`
}

type analyzeRepoResponse struct {
	Issues []core.Finding `json:"issues"`
	Trust  *trust.Report  `json:"trust"`
	Error  string         `json:"error,omitempty"`
}

// Routes wires the handlers behind a permissive CORS middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/analyze_file", s.handleAnalyzeFile)
	mux.HandleFunc("/analyze_repo", s.handleAnalyzeRepo)
	mux.HandleFunc("/explain", s.handleExplain)
	return corsMiddleware(mux)
}

func (s *Server) ListenAndServe(addr string) error {
	log.Printf("Listening on %s", addr)
	return http.ListenAndServe(addr, s.Routes())
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, statusCode int, detail string) {
	writeJSON(w, statusCode, map[string]string{"detail": detail})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "gitsec-scanner is working!"})
}

// handleAnalyzeFile scans one uploaded source file. Decode failures are
// reported as data, not as HTTP errors: the response carries a single
// Error-severity finding.
func (s *Server) handleAnalyzeFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := r.ParseMultipartForm(s.MaxFileSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing 'file' field")
		return
	}
	defer file.Close()

	if header.Size > s.MaxFileSize {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Max size is 1MB.")
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, s.MaxFileSize+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read upload")
		return
	}
	if int64(len(content)) > s.MaxFileSize {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Max size is 1MB.")
		return
	}

	if !utf8.Valid(content) {
		writeJSON(w, http.StatusOK, analyzeFileResponse{Issues: []core.Finding{{
			Filename: header.Filename,
			Line:     0,
			Issue:    "File is not valid text",
			Severity: core.SeverityError,
			Code:     "",
		}}})
		return
	}

	findings := detectors.Scan(string(content), header.Filename)
	if findings == nil {
		findings = []core.Finding{}
	}
	writeJSON(w, http.StatusOK, analyzeFileResponse{Issues: findings})
}

// handleAnalyzeRepo clones a github.com repository into a scratch directory,
// scans every supported file and attaches the trust report. Clone or scan
// failures come back inside the response body; a single bad file never aborts
// the batch.
func (s *Server) handleAnalyzeRepo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req repoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	log.Printf("Received Repo URL: %s", req.URL)

	if !strings.HasPrefix(req.URL, githubURLPrefix) {
		writeError(w, http.StatusBadRequest, "Invalid URL. Must start with 'https://github.com/'")
		return
	}

	var trustReport *trust.Report
	if s.trustScorer != nil {
		trustReport = s.trustScorer.Score(req.URL)
	}

	repoName, err := utils.ExtractRepoName(req.URL)
	if err != nil {
		writeJSON(w, http.StatusOK, analyzeRepoResponse{Issues: []core.Finding{}, Trust: trustReport, Error: err.Error()})
		return
	}

	if err := os.MkdirAll(s.CloneBaseDir, os.ModePerm); err != nil {
		writeJSON(w, http.StatusOK, analyzeRepoResponse{Issues: []core.Finding{}, Trust: trustReport, Error: err.Error()})
		return
	}

	repoPath := filepath.Join(s.CloneBaseDir, fmt.Sprintf("temp_repo_%s", uuid.New().String()))
	defer utils.RemoveRepository(repoPath)

	if err := utils.CloneRepository(req.URL, repoPath); err != nil {
		writeJSON(w, http.StatusOK, analyzeRepoResponse{Issues: []core.Finding{}, Trust: trustReport, Error: err.Error()})
		return
	}

	findings, err := s.fileScanner.TraverseAndSearch(repoPath, repoName)
	if err != nil {
		log.Printf("Some files could not be scanned in '%s': %v", repoName, err)
	}
	if findings == nil {
		findings = []core.Finding{}
	}

	writeJSON(w, http.StatusOK, analyzeRepoResponse{Issues: findings, Trust: trustReport})
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req explainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	explanation := explain.Unavailable
	if s.explainer != nil {
		explanation = s.explainer.Explain(req.Code, req.Issue)
	}
	writeJSON(w, http.StatusOK, map[string]string{"explanation": explanation})
}
