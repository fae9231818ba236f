package grpc

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-pg-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-pg-ledger/internal/app/core/usecase"
	pb "github.com/JoeShih716/go-pg-ledger/proto"
)

// 非業務錯誤一律回傳這組代碼與訊息，細節只寫進 log
const (
	codeFatalError    = "E_FATAL_ERROR"
	fatalErrorMessage = "Fatal error occurred."
	errorInfoDomain   = "ledger.v1"
)

type GrpcServer struct {
	pb.UnimplementedLedgerServiceServer
	core *usecase.CoreUseCase
	log  *zap.Logger
}

func NewGrpcServer(core *usecase.CoreUseCase, log *zap.Logger) *GrpcServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &GrpcServer{
		core: core,
		log:  log,
	}
}

func (s *GrpcServer) GetBalance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	accountNumber, err := requiredString(req, "accountNumber")
	if err != nil {
		return nil, s.toStatus(err)
	}
	balance, err := s.core.GetCurrentBalance(ctx, accountNumber)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return structpb.NewStruct(map[string]any{
		"accountNumber": accountNumber,
		"balance":       balance.String(),
	})
}

func (s *GrpcServer) AddTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	// 1. 解析參數
	accountNumber, err := requiredString(req, "accountNumber")
	if err != nil {
		return nil, s.toStatus(err)
	}
	amount, err := decimalField(req, "amount")
	if err != nil {
		return nil, s.toStatus(err)
	}
	opts, err := transactionOptions(req)
	if err != nil {
		return nil, s.toStatus(err)
	}

	// 2. 執行交易
	result, err := s.core.AddTransaction(ctx, accountNumber, amount, opts...)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.respond(result)
}

func (s *GrpcServer) Transfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fromAccountNumber, err := requiredString(req, "fromAccountNumber")
	if err != nil {
		return nil, s.toStatus(err)
	}
	toAccountNumber, err := requiredString(req, "toAccountNumber")
	if err != nil {
		return nil, s.toStatus(err)
	}
	amount, err := decimalField(req, "amount")
	if err != nil {
		return nil, s.toStatus(err)
	}
	opts, err := transactionOptions(req)
	if err != nil {
		return nil, s.toStatus(err)
	}

	results, err := s.core.Transfer(ctx, fromAccountNumber, amount, toAccountNumber, opts...)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.respond(map[string]any{"transactions": results})
}

func (s *GrpcServer) GetAccountHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	accountNumber, err := requiredString(req, "accountNumber")
	if err != nil {
		return nil, s.toStatus(err)
	}
	opts, err := historyOptions(req)
	if err != nil {
		return nil, s.toStatus(err)
	}

	history, err := s.core.GetAccountHistory(ctx, accountNumber, opts)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.respond(history)
}

func (s *GrpcServer) GetTransactionByCode(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	code, err := requiredString(req, "code")
	if err != nil {
		return nil, s.toStatus(err)
	}
	tx, err := s.core.GetTransactionByCode(ctx, code)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.respond(tx)
}

func (s *GrpcServer) respond(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return out, nil
}

// toStatus 將錯誤轉成 gRPC status，業務錯誤代碼放在 ErrorInfo.Reason
func (s *GrpcServer) toStatus(err error) error {
	var c codes.Code
	code := domain.CodeOf(err)
	message := err.Error()
	switch code {
	case domain.CodeNotFound:
		c = codes.NotFound
	case domain.CodeInvalidPageNo, domain.CodeInvalidPageSize, domain.CodeMissingArgument, domain.CodeInvalidArgument:
		c = codes.InvalidArgument
	default:
		s.log.Error("ledger operation failed", zap.Error(err))
		c = codes.Internal
		code = codeFatalError
		message = fatalErrorMessage
	}

	st, detailErr := status.New(c, message).WithDetails(&errdetails.ErrorInfo{
		Reason: string(code),
		Domain: errorInfoDomain,
	})
	if detailErr != nil {
		return status.Error(c, message)
	}
	return st.Err()
}

var _ pb.LedgerServiceServer = (*GrpcServer)(nil)
