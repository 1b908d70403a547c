package conf

import "testing"

func TestValidateRejectsNonPositiveAudioRate(t *testing.T) {
	base := func() Settings {
		return Settings{
			Audio:  AudioSettings{Rate: 48000, BufferSize: 2048},
			Player: PlayerSettings{PoolSize: 256, DefaultTempo: 120},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{name: "valid settings pass", mutate: func(*Settings) {}, wantErr: false},
		{name: "zero audio rate rejected", mutate: func(s *Settings) { s.Audio.Rate = 0 }, wantErr: true},
		{name: "zero buffer size rejected", mutate: func(s *Settings) { s.Audio.BufferSize = 0 }, wantErr: true},
		{name: "zero pool size rejected", mutate: func(s *Settings) { s.Player.PoolSize = 0 }, wantErr: true},
		{name: "non-positive default tempo rejected", mutate: func(s *Settings) { s.Player.DefaultTempo = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(&s)
			err := validate(&s)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetDefaultConfigPathsReturnsNonEmpty(t *testing.T) {
	paths, err := GetDefaultConfigPaths()
	if err != nil {
		t.Fatalf("GetDefaultConfigPaths: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("expected at least one config path")
	}
	for _, p := range paths {
		if p == "" {
			t.Errorf("got empty config path in %v", paths)
		}
	}
}
