package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/aws/aws-lambda-go/events"

	"github.com/CorruptResonant/gitsec-scanner/core"
	"github.com/CorruptResonant/gitsec-scanner/processors"
	"github.com/CorruptResonant/gitsec-scanner/scanners"
	"github.com/CorruptResonant/gitsec-scanner/trust"
	"github.com/CorruptResonant/gitsec-scanner/utils"
)

// LambdaRequest represents the expected JSON structure in the request body
type LambdaRequest struct {
	Repo   string `json:"repo"`
	Cutoff string `json:"cutoff"`
}

// LambdaScanResult is the response body for a successful scan.
type LambdaScanResult struct {
	Issues   []core.Finding       `json:"issues"`
	Trust    *trust.Report        `json:"trust"`
	Activity *utils.ActivityStats `json:"activity,omitempty"`
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {

	var lambdaReq LambdaRequest
	err := json.Unmarshal([]byte(request.Body), &lambdaReq)

	if err != nil {
		log.Printf("Error parsing request body: %v", err)
		return toAPIGatewayResponse(400, `{"error": "Invalid JSON format."}`), nil
	}

	if lambdaReq.Repo == "" {
		errMsg := "The 'repo' field is required in the JSON request."
		log.Println(errMsg)
		return toAPIGatewayResponse(400, fmt.Sprintf(`{"error": "%s"}`, errMsg)), nil
	}

	log.Printf("Cut off: %s", lambdaReq.Cutoff)

	result, err := ScanRepo(ctx, lambdaReq.Repo, lambdaReq.Cutoff)
	if err != nil {
		log.Printf("Error scanning repository: %v", err)
		errorBody, _ := json.Marshal(map[string]string{"error": err.Error()})
		return toAPIGatewayResponse(500, string(errorBody)), nil
	}

	body, err := json.Marshal(result)
	if err != nil {
		return toAPIGatewayResponse(500, `{"error": "Failed to encode scan result."}`), nil
	}

	return toAPIGatewayResponse(200, string(body)), nil
}

// toAPIGatewayResponse converts a status code and body to events.APIGatewayProxyResponse
func toAPIGatewayResponse(statusCode int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode:      statusCode,
		Headers:         map[string]string{"Content-Type": "application/json"},
		Body:            body,
		IsBase64Encoded: false,
	}
}

// getStoredParameter retrieves a decrypted parameter from SSM Parameter
// Store. The parameter name is SSM_PARAMETER_PREFIX plus the given suffix.
func getStoredParameter(ctx context.Context, suffix string) (string, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	svc := ssm.NewFromConfig(cfg)

	paramPrefix := os.Getenv("SSM_PARAMETER_PREFIX")
	if paramPrefix == "" {
		return "", fmt.Errorf("SSM_PARAMETER_PREFIX environment variable is not set")
	}

	paramName := fmt.Sprintf("%s%s", paramPrefix, suffix)

	input := &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	}

	result, err := svc.GetParameter(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve parameter '%s': %w", paramName, err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil {
		return "", fmt.Errorf("parameter '%s' has no value", paramName)
	}

	return *result.Parameter.Value, nil
}

// githubToken resolves the token used for trust-score metadata lookups: SSM
// when the parameter prefix is configured, the environment otherwise.
func githubToken(ctx context.Context) string {
	if os.Getenv("SSM_PARAMETER_PREFIX") != "" {
		token, err := getStoredParameter(ctx, "github_token")
		if err == nil {
			return token
		}
		log.Printf("Falling back to GITHUB_TOKEN env var: %v", err)
	}
	return os.Getenv("GITHUB_TOKEN")
}

// ScanRepo performs the repository scan and returns the scan result
func ScanRepo(ctx context.Context, repoURL string, cutoff string) (*LambdaScanResult, error) {
	repoName, err := utils.ExtractRepoName(repoURL)
	if err != nil {
		return nil, fmt.Errorf("invalid repository URL '%s': %w", repoURL, err)
	}

	if err := os.MkdirAll(scanners.CloneBaseDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create clone base directory: %w", err)
	}

	repoPath := filepath.Join(scanners.CloneBaseDir, fmt.Sprintf("%s_%s", utils.SanitizeRepoName(repoName), uuid.New().String()))
	defer utils.RemoveRepository(repoPath)

	if err := utils.CloneRepository(repoURL, repoPath); err != nil {
		return nil, fmt.Errorf("failed to clone repository '%s': %w", repoName, err)
	}

	scorer := trust.NewScorer(utils.NewGithubApiClientWithToken(githubToken(ctx)), nil)
	trustReport := scorer.Score(repoURL)

	var activity *utils.ActivityStats
	stats, err := utils.GitMetricsClient{}.CollectActivity(repoPath, cutoff)
	if err != nil {
		log.Printf("Could not collect commit activity for '%s': %v", repoName, err)
	} else {
		activity = &stats
	}

	fileScanner := scanners.NewFsFileScanner(processors.InitializeProcessors(), nil)
	findings, err := fileScanner.TraverseAndSearch(repoPath, repoName)
	if err != nil {
		log.Printf("Some files could not be scanned in '%s': %v", repoName, err)
	}
	if findings == nil {
		findings = []core.Finding{}
	}

	return &LambdaScanResult{
		Issues:   findings,
		Trust:    trustReport,
		Activity: activity,
	}, nil
}
