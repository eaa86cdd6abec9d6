// Copyright 2025 BINARY Members
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package service bridges the wire message shapes to the transactional
// engine. It implements the Transaction and Timestamp RPC contracts from
// the spec's external interfaces in plain Go method calls; wiring these up
// to an actual RPC transport (thrift/kitex server, HTTP, whatever) is left
// to whoever embeds this package.
package service

import (
	"errors"

	"github.com/oriumlabs/txnkv"
	"github.com/oriumlabs/txnkv/internal/logger"
	"github.com/oriumlabs/txnkv/types"
	"github.com/oriumlabs/txnkv/wire"
)

// Transaction dispatches Get/Prewrite/Commit onto a MemoryStorage.
type Transaction struct {
	storage *txnkv.MemoryStorage
}

// NewTransaction builds a Transaction service over storage.
func NewTransaction(storage *txnkv.MemoryStorage) *Transaction {
	return &Transaction{storage: storage}
}

// Get implements Transaction.Get.
func (t *Transaction) Get(req *wire.GetRequest) (*wire.GetResponse, error) {
	value, err := t.storage.Get(types.Key(req.Key), req.StartTs)
	if err != nil {
		return nil, asKindError(err)
	}
	return &wire.GetResponse{Value: value}, nil
}

// Prewrite implements Transaction.Prewrite.
func (t *Transaction) Prewrite(req *wire.PrewriteRequest) (*wire.PrewriteResponse, error) {
	err := t.storage.Prewrite(
		types.Key(req.Write.Key),
		req.Write.Value,
		types.Key(req.Primary.Key),
		req.StartTs,
	)
	if err != nil {
		return nil, asKindError(err)
	}
	return &wire.PrewriteResponse{}, nil
}

// Commit implements Transaction.Commit.
func (t *Transaction) Commit(req *wire.CommitRequest) (*wire.CommitResponse, error) {
	err := t.storage.Commit(types.Key(req.Write.Key), req.StartTs, req.CommitTs, req.IsPrimary)
	if err != nil {
		return nil, asKindError(err)
	}
	return &wire.CommitResponse{}, nil
}

// Timestamp dispatches GetTimestamp onto a TimestampOracle.
type Timestamp struct {
	oracle *txnkv.TimestampOracle
}

// NewTimestamp builds a Timestamp service over oracle.
func NewTimestamp(oracle *txnkv.TimestampOracle) *Timestamp {
	return &Timestamp{oracle: oracle}
}

// GetTimestamp implements Timestamp.GetTimestamp.
func (t *Timestamp) GetTimestamp(*wire.TimestampRequest) (*wire.TimestampResponse, error) {
	return &wire.TimestampResponse{Ts: t.oracle.GetTimestamp()}, nil
}

// asKindError logs and forwards a txnkv.Error unchanged; the RPC transport
// is expected to carry err.Error()'s Kind prefix as the opaque failure tag
// described in the external-interfaces contract.
func asKindError(err error) error {
	var kindErr *txnkv.Error
	if errors.As(err, &kindErr) {
		logger.Get().Debugf("service: %s", kindErr.Error())
	}
	return err
}
