package services

import (
	"context"
	"errors"
	"fmt"

	"verifix/models"
	"verifix/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// cognitoAuthAPI is the Cognito call the verifier needs
type cognitoAuthAPI interface {
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
}

// CognitoVerifier authenticates against an AWS Cognito user pool app client
type CognitoVerifier struct {
	api          cognitoAuthAPI
	clientID     string
	clientSecret string
}

func NewCognitoVerifier(ctx context.Context, region, clientID, clientSecret string) (*CognitoVerifier, error) {
	cfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &CognitoVerifier{
		api:          cognitoidentityprovider.NewFromConfig(cfg),
		clientID:     clientID,
		clientSecret: clientSecret,
	}, nil
}

func (v *CognitoVerifier) Verify(ctx context.Context, email, password string) (models.Principal, error) {
	email = normalizeEmail(email)
	params := map[string]string{
		"USERNAME": email,
		"PASSWORD": password,
	}
	if v.clientSecret != "" {
		params["SECRET_HASH"] = utils.GenerateSecretHash(email, v.clientID, v.clientSecret)
	}

	out, err := v.api.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeUserPasswordAuth,
		ClientId:       aws.String(v.clientID),
		AuthParameters: params,
	})
	if err != nil {
		var notAuthorized *types.NotAuthorizedException
		var notFound *types.UserNotFoundException
		if errors.As(err, &notAuthorized) || errors.As(err, &notFound) {
			return models.Principal{}, ErrInvalidCredentials
		}
		return models.Principal{}, fmt.Errorf("cognito authentication failed: %w", err)
	}
	if out.AuthenticationResult == nil {
		return models.Principal{}, ErrInvalidCredentials
	}

	return models.Principal{
		Email: email,
		Role:  models.RoleUser,
		Name:  utils.ExtractNameFromEmail(email),
	}, nil
}
