package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/smdu-sp/antares-backend/internal/apperr"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica conta desativada.
	ErrAccountDisabled = errors.New("conta desativada")
	// ErrRefreshInvalid indica refresh token inválido ou expirado.
	ErrRefreshInvalid = errors.New("refresh token inválido")
)

// Conta reúne os dados de usuário necessários para autenticar e emitir tokens.
type Conta struct {
	ID        uuid.UUID
	Nome      string
	Login     string
	Email     string
	Permissao string
	UnidadeID uuid.UUID
	SenhaHash *string
	Ativo     bool
}

// ContaRepository resolve contas por login ou id.
type ContaRepository interface {
	BuscarContaPorLogin(ctx context.Context, login string) (Conta, error)
	BuscarContaPorID(ctx context.Context, id uuid.UUID) (Conta, error)
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Service concentra regras de autenticação e sessões.
type Service struct {
	contas     ContaRepository
	redis      redisCommander
	jwt        *JWTManager
	refreshTTL time.Duration
}

// NewService cria novo serviço de autenticação.
func NewService(contas ContaRepository, redisClient *redis.Client, jwtMgr *JWTManager, refreshTTL time.Duration) *Service {
	return &Service{contas: contas, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *Service) JWT() *JWTManager {
	return s.jwt
}

// Perfil descreve o usuário autenticado.
type Perfil struct {
	ID        string `json:"id"`
	Nome      string `json:"nome"`
	Login     string `json:"login"`
	Email     string `json:"email"`
	Permissao string `json:"permissao"`
	UnidadeID string `json:"unidade_id"`
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiraEm     time.Time `json:"expira_em"`
	Usuario      Perfil    `json:"usuario"`
}

// Login autentica por login e senha locais.
func (s *Service) Login(ctx context.Context, login, senha string) (*LoginResult, error) {
	conta, err := s.contas.BuscarContaPorLogin(ctx, strings.ToLower(strings.TrimSpace(login)))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Warn().Msg("login: usuário não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if conta.SenhaHash == nil || *conta.SenhaHash == "" {
		log.Warn().Str("login", conta.Login).Msg("login: conta sem senha local")
		return nil, ErrInvalidCredentials
	}

	ok, err := Verify(senha, *conta.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verify password failed")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Str("login", conta.Login).Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}

	return s.emitir(ctx, conta)
}

// Refresh troca um refresh token válido por um novo par de tokens.
func (s *Service) Refresh(ctx context.Context, raw string) (*LoginResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrRefreshInvalid
	}

	key := RefreshRedisKey(HashRefreshToken(raw))
	subject, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrRefreshInvalid
	}

	conta, err := s.contas.BuscarContaPorID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	return s.emitir(ctx, conta)
}

// Logout revoga o refresh token informado.
func (s *Service) Logout(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return s.redis.Del(ctx, RefreshRedisKey(HashRefreshToken(raw))).Err()
}

// Perfil devolve os dados do usuário autenticado.
func (s *Service) Perfil(ctx context.Context, id uuid.UUID) (*Perfil, error) {
	conta, err := s.contas.BuscarContaPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	p := perfilDe(conta)
	return &p, nil
}

func (s *Service) emitir(ctx context.Context, conta Conta) (*LoginResult, error) {
	if !conta.Ativo {
		return nil, ErrAccountDisabled
	}

	token, expires, err := s.jwt.GenerateAccessToken(conta)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := s.redis.Set(ctx, RefreshRedisKey(refreshHash), conta.ID.String(), s.refreshTTL).Err(); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  token,
		RefreshToken: rawRefresh,
		ExpiraEm:     expires,
		Usuario:      perfilDe(conta),
	}, nil
}

func perfilDe(conta Conta) Perfil {
	return Perfil{
		ID:        conta.ID.String(),
		Nome:      conta.Nome,
		Login:     conta.Login,
		Email:     conta.Email,
		Permissao: conta.Permissao,
		UnidadeID: conta.UnidadeID.String(),
	}
}
