package validation

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "ctview/internal/errors"
)

func TestValidateExtension(t *testing.T) {
	v := NewBundleValidator(nil, 1<<20)

	tests := []struct {
		name     string
		filename string
		want     string
		wantErr  bool
	}{
		{name: "cfg", filename: "fault.cfg", want: "cfg"},
		{name: "dat", filename: "fault.dat", want: "dat"},
		{name: "hdr", filename: "fault.hdr", want: "hdr"},
		{name: "inf", filename: "fault.inf", want: "inf"},
		{name: "uppercase extension", filename: "FAULT.CFG", want: "cfg"},
		{name: "nested path", filename: "records/2023/fault.dat", want: "dat"},
		{name: "unsupported extension", filename: "fault.csv", wantErr: true},
		{name: "no extension", filename: "fault", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateExtension(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				var appErr *apierrors.AppError
				assert.True(t, errors.As(err, &appErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateBundle(t *testing.T) {
	validCFG := []byte("SUB-MAIN,REC1,1999\n1,1A,0D\n")
	validDAT := []byte("1,0,100\n")

	tests := []struct {
		name    string
		cfg     []byte
		dat     []byte
		maxSize int64
		wantErr string
	}{
		{
			name:    "valid bundle",
			cfg:     validCFG,
			dat:     validDAT,
			maxSize: 1 << 20,
		},
		{
			name:    "missing cfg",
			cfg:     nil,
			dat:     validDAT,
			maxSize: 1 << 20,
			wantErr: "missing the .cfg",
		},
		{
			name:    "missing dat",
			cfg:     validCFG,
			dat:     nil,
			maxSize: 1 << 20,
			wantErr: "missing the .dat",
		},
		{
			name:    "cfg over size limit",
			cfg:     bytes.Repeat([]byte("x"), 32),
			dat:     validDAT,
			maxSize: 16,
			wantErr: "limit",
		},
		{
			name:    "dat over size limit",
			cfg:     validCFG,
			dat:     bytes.Repeat([]byte("y"), 1<<12),
			maxSize: int64(len(validCFG)),
			wantErr: "limit",
		},
		{
			name:    "cfg not text",
			cfg:     []byte{0xff, 0xfe, 0x00, 0x01, '\n', 'x', '\n'},
			dat:     validDAT,
			maxSize: 1 << 20,
			wantErr: "not valid text",
		},
		{
			name:    "cfg single line",
			cfg:     []byte("SUB-MAIN,REC1,1999"),
			dat:     validDAT,
			maxSize: 1 << 20,
			wantErr: "too short",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewBundleValidator(nil, tt.maxSize)

			err := v.ValidateBundle(tt.cfg, tt.dat)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var appErr *apierrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, apierrors.ErrTypeValidation, appErr.Type)
		})
	}
}
