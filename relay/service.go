package relay

import (
	"context"
	"errors"

	"relay-gateway/middleware/requestlog"

	"go.uber.org/zap"
)

// Poster é a capacidade de saída usada pelo Service. *Client implementa.
type Poster interface {
	Post(ctx context.Context, url, contentType string, body []byte) (Response, error)
}

// Payload é o corpo recebido do chamador, repassado como veio.
type Payload struct {
	ContentType string
	Body        []byte
}

type Service struct {
	client      Poster
	serviceBURL string
	serviceAURL string
	logger      *zap.Logger
}

func NewService(client Poster, serviceBURL, serviceAURL string, logger *zap.Logger) (*Service, error) {
	if client == nil {
		return nil, errors.New("relay client cannot be nil")
	}
	if serviceBURL == "" || serviceAURL == "" {
		return nil, errors.New("both downstream URLs are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:      client,
		serviceBURL: serviceBURL,
		serviceAURL: serviceAURL,
		logger:      logger.Named("relay"),
	}, nil
}

// Transfer envia o payload para B e a resposta de B para A, nessa ordem.
// Se B falhar, A não é chamado. Erros são sempre *DownstreamError.
func (s *Service) Transfer(ctx context.Context, p Payload) (Response, error) {
	log := s.logger
	if id := requestlog.RequestID(ctx); id != "" {
		log = log.With(zap.String("request_id", id))
	}

	log.Info("Incoming request payload", zap.ByteString("payload", p.Body))

	b, err := s.client.Post(ctx, s.serviceBURL, p.ContentType, p.Body)
	if err != nil {
		return Response{}, downstreamError(HopServiceB, err)
	}
	log.Info("Response from service B",
		zap.String("url", s.serviceBURL),
		zap.Int("status", b.StatusCode),
		zap.ByteString("body", b.Body),
	)

	a, err := s.client.Post(ctx, s.serviceAURL, b.ContentType, b.Body)
	if err != nil {
		return Response{}, downstreamError(HopServiceA, err)
	}
	log.Info("Response from service A",
		zap.String("url", s.serviceAURL),
		zap.Int("status", a.StatusCode),
		zap.ByteString("body", a.Body),
	)

	return a, nil
}
