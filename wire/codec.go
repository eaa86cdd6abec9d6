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

package wire

import (
	"github.com/apache/thrift/lib/go/thrift"
	"github.com/cloudwego/frugal"

	"github.com/oriumlabs/txnkv/internal/bufferpool"
)

// Marshal encodes a wire message to bytes using frugal's generated-free
// encoder, which walks msg's fields directly against the thrift.TStruct
// contract above.
func Marshal(msg thrift.TStruct) ([]byte, error) {
	buf := bufferpool.Messages.Get()
	defer bufferpool.Messages.Put(buf)

	size := frugal.EncodedSize(msg)
	buf.Grow(size)
	scratch := buf.Bytes()[:size]
	n, err := frugal.EncodeObject(scratch, nil, msg)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, scratch[:n])
	return out, nil
}

// Unmarshal decodes bytes produced by Marshal into msg.
func Unmarshal(data []byte, msg thrift.TStruct) error {
	_, err := frugal.DecodeObject(data, msg)
	return err
}
