package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEnvelopeAcceptsWellFormed(t *testing.T) {
	env := NewRequest(MsgCSGetStreamReq, 1)
	data, err := env.Marshal()
	assert.NoError(t, err)
	assert.NoError(t, ValidateEnvelope(data))
}

func TestValidateEnvelopeRejectsMissingHeader(t *testing.T) {
	err := ValidateEnvelope([]byte(`{"EasyDarwin": {"Body": {}}}`))
	assert.Error(t, err)
}

func TestValidateEnvelopeRejectsMissingCSeq(t *testing.T) {
	err := ValidateEnvelope([]byte(`{"EasyDarwin": {"Header": {"MessageName": 1001}}}`))
	assert.Error(t, err)
}

func TestValidateEnvelopeRejectsCSeqAsNumber(t *testing.T) {
	err := ValidateEnvelope([]byte(`{"EasyDarwin": {"Header": {"MessageName": 1001, "CSeq": 1}}}`))
	assert.Error(t, err)
}

func TestValidateEnvelopeRejectsNonObjectTopLevel(t *testing.T) {
	assert.Error(t, ValidateEnvelope([]byte(`[]`)))
}
