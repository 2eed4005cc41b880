package service

import (
	"github.com/mdouchement/echoppe/internal/database"
	"github.com/mdouchement/echoppe/internal/model"
	"github.com/mdouchement/echoppe/internal/password"
	"github.com/pkg/errors"
)

var (
	// ErrEmailRegistered is returned when registering an email that already has an account.
	ErrEmailRegistered = errors.New("email already registered")
	// ErrUnknownEmail is returned when no account exists for the given email.
	ErrUnknownEmail = errors.New("unknown email")
	// ErrWrongPassword is returned when the password does not match the account.
	ErrWrongPassword = errors.New("wrong password")
)

type (
	// A UserService handles registration and authentication.
	UserService interface {
		// Register creates a new account. The first account is an administrator.
		Register(params RegisterParams) (*model.User, error)
		// Login returns the user matching the given credentials.
		Login(params LoginParams) (*model.User, error)
	}

	// RegisterParams are used to register a user.
	RegisterParams struct {
		Email    string `form:"email"    validate:"required"`
		Password string `form:"password" validate:"required"`
		Name     string `form:"name"     validate:"required"`
	}

	// LoginParams are used to login a user.
	LoginParams struct {
		Email    string `form:"email"    validate:"required"`
		Password string `form:"password" validate:"required"`
	}

	userService struct {
		db database.Client
	}
)

// NewUser returns a new UserService.
func NewUser(db database.Client) UserService {
	return &userService{db: db}
}

func (s *userService) Register(params RegisterParams) (*model.User, error) {
	// Check if the email is free to use.
	u, err := s.db.FindUserByMail(params.Email)
	if err != nil && !s.db.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not get access to database")
	}
	if u != nil {
		return nil, ErrEmailRegistered
	}

	count, err := s.db.CountUsers()
	if err != nil {
		return nil, errors.Wrap(err, "could not count users")
	}

	user := &model.User{
		Email: params.Email,
		Name:  params.Name,
		Admin: count == 0,
	}

	user.Password, err = password.Generate(params.Password)
	if err != nil {
		return nil, errors.Wrap(err, "could not store user password safe")
	}

	if err := s.db.Save(user); err != nil {
		if s.db.IsAlreadyExists(err) {
			return nil, ErrEmailRegistered
		}
		return nil, errors.Wrap(err, "could not persist user")
	}

	return user, nil
}

func (s *userService) Login(params LoginParams) (*model.User, error) {
	user, err := s.db.FindUserByMail(params.Email)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, ErrUnknownEmail
		}
		return nil, errors.Wrap(err, "could not get user")
	}

	if err := password.Compare(user.Password, params.Password); err != nil {
		if err == password.ErrMismatchedHashAndPassword {
			return nil, ErrWrongPassword
		}
		return nil, errors.Wrap(err, "could not validate password")
	}

	return user, nil
}
