package handlers

import (
	"errors"

	"github.com/disuhitarth/EcommerceConcept/internal/genai"
	"github.com/disuhitarth/EcommerceConcept/internal/platform"
	apperrors "github.com/disuhitarth/EcommerceConcept/pkg/util"
)

// upstreamError maps client failures from the remote platform and the
// generation API onto the response envelope.
func upstreamError(err error, fallback string) error {
	if errors.Is(err, genai.ErrNotConfigured) || errors.Is(err, platform.ErrNotConfigured) {
		return apperrors.NewServiceUnavailable(err.Error())
	}

	var genErr *genai.APIError
	if errors.As(err, &genErr) {
		return apperrors.NewUpstreamError(genErr.Message, err)
	}
	var platErr *platform.APIError
	if errors.As(err, &platErr) {
		return apperrors.NewUpstreamError(platErr.Message, err)
	}

	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewUpstreamError(fallback, err)
}
