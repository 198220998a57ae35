package services

import (
	"context"
	"errors"
	"testing"

	"verifix/models"
	"verifix/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

func TestStaticVerifier_DemoAccounts(t *testing.T) {
	v, err := NewStaticVerifier(DemoAccounts())
	if err != nil {
		t.Fatalf("NewStaticVerifier failed: %v", err)
	}

	admin, err := v.Verify(context.Background(), "admin@verifix.com", "admin123")
	if err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	if admin.Role != models.RoleAdmin || admin.Name != "Admin User" {
		t.Errorf("unexpected admin principal: %+v", admin)
	}

	user, err := v.Verify(context.Background(), " User@Test.com ", "user123")
	if err != nil {
		t.Fatalf("user login failed: %v", err)
	}
	if user.Role != models.RoleUser || user.Name != "Test User" {
		t.Errorf("unexpected user principal: %+v", user)
	}
}

func TestStaticVerifier_Rejects(t *testing.T) {
	v, _ := NewStaticVerifier(DemoAccounts())

	cases := [][2]string{
		{"admin@verifix.com", "user123"},
		{"user@test.com", ""},
		{"nobody@test.com", "user123"},
	}
	for _, c := range cases {
		if _, err := v.Verify(context.Background(), c[0], c[1]); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s/%s: expected ErrInvalidCredentials, got %v", c[0], c[1], err)
		}
	}
}

type fakePrincipalStore struct {
	principals map[string]*models.StoredPrincipal
	err        error
}

func (f *fakePrincipalStore) FindPrincipal(ctx context.Context, email string) (*models.StoredPrincipal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.principals[email], nil
}

func TestStoreVerifier(t *testing.T) {
	hash, _ := utils.HashPassword("s3cret")
	store := &fakePrincipalStore{principals: map[string]*models.StoredPrincipal{
		"ops@verifix.com": {
			Principal:    models.Principal{Email: "ops@verifix.com", Role: models.RoleAdmin, Name: "Ops"},
			PasswordHash: hash,
		},
	}}
	v := NewStoreVerifier(store)

	p, err := v.Verify(context.Background(), "OPS@verifix.com", "s3cret")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if p.Role != models.RoleAdmin {
		t.Errorf("unexpected role: %s", p.Role)
	}
	if _, err := v.Verify(context.Background(), "ops@verifix.com", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := v.Verify(context.Background(), "ghost@verifix.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestChainVerifier(t *testing.T) {
	static, _ := NewStaticVerifier(DemoAccounts())
	broken := NewStoreVerifier(&fakePrincipalStore{err: errors.New("db down")})

	chain := ChainVerifier{broken, static}
	if _, err := chain.Verify(context.Background(), "user@test.com", "user123"); err != nil {
		t.Errorf("chain should fall through to the static verifier: %v", err)
	}

	_, err := chain.Verify(context.Background(), "user@test.com", "bad")
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("infrastructure error should surface, got %v", err)
	}

	if _, err := (ChainVerifier{static}).Verify(context.Background(), "user@test.com", "bad"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

type fakeCognito struct {
	input *cognitoidentityprovider.InitiateAuthInput
	out   *cognitoidentityprovider.InitiateAuthOutput
	err   error
}

func (f *fakeCognito) InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error) {
	f.input = params
	return f.out, f.err
}

func TestCognitoVerifier(t *testing.T) {
	api := &fakeCognito{out: &cognitoidentityprovider.InitiateAuthOutput{
		AuthenticationResult: &types.AuthenticationResultType{AccessToken: aws.String("tok")},
	}}
	v := &CognitoVerifier{api: api, clientID: "client", clientSecret: "secret"}

	p, err := v.Verify(context.Background(), "Priya@Example.com", "pw")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if p.Email != "priya@example.com" || p.Name != "priya" || p.Role != models.RoleUser {
		t.Errorf("unexpected principal: %+v", p)
	}
	if api.input.AuthFlow != types.AuthFlowTypeUserPasswordAuth {
		t.Errorf("unexpected auth flow: %s", api.input.AuthFlow)
	}
	if api.input.AuthParameters["SECRET_HASH"] != utils.GenerateSecretHash("priya@example.com", "client", "secret") {
		t.Error("secret hash missing or wrong")
	}
}

func TestCognitoVerifier_NotAuthorized(t *testing.T) {
	api := &fakeCognito{err: &types.NotAuthorizedException{Message: aws.String("Incorrect username or password.")}}
	v := &CognitoVerifier{api: api, clientID: "client"}

	if _, err := v.Verify(context.Background(), "a@b.com", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, ok := api.input.AuthParameters["SECRET_HASH"]; ok {
		t.Error("no secret hash expected without a client secret")
	}
}
