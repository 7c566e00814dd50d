package codec

import "testing"

func TestDefaultRegistryHasBothJPEGVariants(t *testing.T) {
	for _, name := range []string{"jpeg-baseline", "jpeg-progressive"} {
		if _, err := Get(name); err != nil {
			t.Errorf("Get(%q): %v", name, err)
		}
	}
}

func TestRegistryRejectsDuplicateName(t *testing.T) {
	r := NewRegistry()
	c := &jpegCodec{name: "dup"}
	if err := r.Register(c); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := r.Register(c); err == nil {
		t.Fatal("expected ErrAlreadyRegistered on second Register")
	}
}

func TestRegistryGetUnknownName(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("does-not-exist"); err != ErrCodecNotFound {
		t.Fatalf("got %v, want ErrCodecNotFound", err)
	}
}

func TestEncodeParamsValidate(t *testing.T) {
	if err := (EncodeParams{Quality: 0}).Validate(); err == nil {
		t.Fatal("expected an error for quality 0")
	}
	if err := (EncodeParams{Quality: 101}).Validate(); err == nil {
		t.Fatal("expected an error for quality 101")
	}
	if err := (EncodeParams{Quality: 80}).Validate(); err != nil {
		t.Fatalf("unexpected error for valid quality: %v", err)
	}
}
