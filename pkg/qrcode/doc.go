// Package qrcode renders strings as PNG QR codes.
//
// It exists to turn otpauth:// provisioning URIs into images that
// authenticator apps can scan during MFA enrollment:
//
//	uri, _ := totp.GetTOTPURI(params)
//	img, err := qrcode.GenerateDataURI(uri, qrcode.DefaultSize)
//
// GenerateDataURI returns a data: URI suitable for JSON responses and HTML
// templates; Generate returns the raw PNG bytes.
package qrcode
