// Package proto 帳務服務的 gRPC 介面
//
// ledger.proto 只使用 well-known type，產生的只有 ledger_grpc.pb.go
package proto

//go:generate protoc --go-grpc_out=. --go-grpc_opt=paths=source_relative ledger.proto
