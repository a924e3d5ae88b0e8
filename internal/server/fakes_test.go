package server

import (
	"context"
	"fmt"
	"io"
	"sync"

	"catcare/internal/schedule"
	"catcare/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	cogtypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

type fakeEventStore struct {
	mu     sync.Mutex
	rows   map[string]*types.EventRow
	nextID int
}

func (f *fakeEventStore) Events(ctx context.Context) ([]*types.EventRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*types.EventRow, 0, len(f.rows))
	for _, r := range f.rows {
		c := *r
		out = append(out, &c)
	}
	return out, nil
}

func (f *fakeEventStore) CreateEvent(ctx context.Context, row *types.EventRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	row.ID = fmt.Sprintf("new%d", f.nextID)
	c := *row
	f.rows[row.ID] = &c
	return nil
}

func (f *fakeEventStore) UpdateEvent(ctx context.Context, eventID string, columns map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[eventID]; !ok {
		return types.ErrEventNotFound
	}
	return nil
}

func (f *fakeEventStore) AssignVolunteer(ctx context.Context, eventID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[eventID]
	if !ok {
		return types.ErrEventNotFound
	}
	row.VolunteerID = aws.String(userID)
	row.Available = false
	return nil
}

func (f *fakeEventStore) SetCompleted(ctx context.Context, eventID string, completed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[eventID]
	if !ok {
		return types.ErrEventNotFound
	}
	row.Completed = completed
	return nil
}

func (f *fakeEventStore) DeleteEvent(ctx context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[eventID]; !ok {
		return types.ErrEventNotFound
	}
	delete(f.rows, eventID)
	return nil
}

func (f *fakeEventStore) row(id string) *types.EventRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

type fakeCatRepo struct {
	mu   sync.Mutex
	cats []*types.Cat
}

func (f *fakeCatRepo) Cats(ctx context.Context) ([]*types.Cat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*types.Cat(nil), f.cats...), nil
}

func (f *fakeCatRepo) CatsByIDs(ctx context.Context, ids []string) ([]*types.Cat, error) {
	var out []*types.Cat
	for _, id := range ids {
		if cat, err := f.Cat(ctx, id); err == nil {
			out = append(out, cat)
		}
	}
	return out, nil
}

func (f *fakeCatRepo) Cat(ctx context.Context, id string) (*types.Cat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cats {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, types.ErrCatNotFound
}

func (f *fakeCatRepo) CreateCat(ctx context.Context, cat *types.Cat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cat.ID = fmt.Sprintf("cat%d", len(f.cats)+1)
	f.cats = append(f.cats, cat)
	return nil
}

func (f *fakeCatRepo) UpdateCat(ctx context.Context, id string, cat *types.Cat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.cats {
		if c.ID == id {
			cat.ID = id
			cat.PhotoKey, cat.PhotoURL = c.PhotoKey, c.PhotoURL
			f.cats[i] = cat
			return nil
		}
	}
	return types.ErrCatNotFound
}

func (f *fakeCatRepo) SetPhoto(ctx context.Context, id, key, url string) error {
	cat, err := f.Cat(ctx, id)
	if err != nil {
		return err
	}
	cat.PhotoKey = aws.String(key)
	cat.PhotoURL = aws.String(url)
	return nil
}

func (f *fakeCatRepo) DeleteCat(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.cats {
		if c.ID == id {
			f.cats = append(f.cats[:i], f.cats[i+1:]...)
			return nil
		}
	}
	return types.ErrCatNotFound
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*types.User
}

func (f *fakeUserRepo) User(ctx context.Context, userID string) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) UsersByIDs(ctx context.Context, userIDs []string) ([]*types.User, error) {
	var out []*types.User
	for _, id := range userIDs {
		if u, err := f.User(ctx, id); err == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) UpsertIdentity(ctx context.Context, userID, email, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		u.Email = aws.String(email)
		u.Name = aws.String(name)
		return nil
	}
	f.users[userID] = &types.User{
		ID:     userID,
		Email:  aws.String(email),
		Name:   aws.String(name),
		Role:   string(types.RoleVolunteer),
		Active: true,
	}
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, userID string, user *types.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return types.ErrUserNotFound
	}
	u.Name, u.Phone = user.Name, user.Phone
	return nil
}

type fakePhotos struct {
	uploaded []string
	deleted  []string
}

func (f *fakePhotos) Upload(ctx context.Context, catID, filename, contentType string, body io.Reader) (string, string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", "", err
	}
	key := "cats/" + catID + "/" + filename
	f.uploaded = append(f.uploaded, key)
	return key, "https://photos.example.com/" + key, nil
}

func (f *fakePhotos) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

// fakeTokens maps opaque access tokens to sessions.
type fakeTokens map[string]schedule.Session

func (f fakeTokens) Verify(ctx context.Context, accessToken string) (schedule.Session, error) {
	session, ok := f[accessToken]
	if !ok {
		return schedule.Session{}, fmt.Errorf("unknown token")
	}
	return session, nil
}

type fakeIdentity struct {
	passwords map[string]string
	signUps   []*cognitoidentityprovider.SignUpInput
}

func (f *fakeIdentity) InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error) {
	username := params.AuthParameters["USERNAME"]
	if pw, ok := f.passwords[username]; !ok || pw != params.AuthParameters["PASSWORD"] {
		return nil, &cogtypes.NotAuthorizedException{Message: aws.String("Incorrect username or password.")}
	}
	return &cognitoidentityprovider.InitiateAuthOutput{
		AuthenticationResult: &cogtypes.AuthenticationResultType{
			AccessToken: aws.String("token-" + username),
			ExpiresIn:   3600,
		},
	}, nil
}

func (f *fakeIdentity) SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error) {
	if _, ok := f.passwords[aws.ToString(params.Username)]; ok {
		return nil, &cogtypes.UsernameExistsException{Message: aws.String("exists")}
	}
	f.signUps = append(f.signUps, params)
	return &cognitoidentityprovider.SignUpOutput{UserSub: aws.String("sub-new")}, nil
}

func (f *fakeIdentity) ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error) {
	if aws.ToString(params.ConfirmationCode) != "123456" {
		return nil, &cogtypes.CodeMismatchException{Message: aws.String("mismatch")}
	}
	return &cognitoidentityprovider.ConfirmSignUpOutput{}, nil
}
