// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

// Builder is used to build script data.
type Builder struct {
	Header  ScriptHeader
	Payload []byte
}

// SetVersion sets the header version.
func (b *Builder) SetVersion(v uint32) *Builder {
	b.Header.Version = v
	return b
}

func (b *Builder) SetModID(id uint32) *Builder {
	b.Header.ModID = id
	return b
}

func (b *Builder) SetPayload(p []byte) *Builder {
	b.Payload = p
	return b
}

// Build builds the script data.
func (b *Builder) Build() *ScriptData {
	return &ScriptData{
		Header:  b.Header,
		Payload: b.Payload,
	}
}
