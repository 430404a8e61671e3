package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupportAudioExt(t *testing.T) {
	assert.True(t, SupportAudioExt(".wav"))
	assert.True(t, SupportAudioExt(".mp3"))
	assert.True(t, SupportAudioExt(".m4a"))
	assert.False(t, SupportAudioExt(".txt"))
	assert.False(t, SupportAudioExt(""))
}

func TestMakeValidateFileName(t *testing.T) {
	f, err := MakeValidateFileName("dir", "olia.wav")
	assert.Nil(t, err)
	assert.Equal(t, "dir/olia.wav", f)

	_, err = MakeValidateFileName("dir", "")
	assert.NotNil(t, err)
	_, err = MakeValidateFileName("dir", "../olia.wav")
	assert.NotNil(t, err)
	_, err = MakeValidateFileName("dir", "a/olia.wav")
	assert.NotNil(t, err)
}

func TestParamTrue(t *testing.T) {
	assert.True(t, ParamTrue("true"))
	assert.True(t, ParamTrue("True"))
	assert.True(t, ParamTrue("1"))
	assert.False(t, ParamTrue("0"))
	assert.False(t, ParamTrue(""))
}
