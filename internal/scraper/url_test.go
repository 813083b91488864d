package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDetailURL(t *testing.T) {
	base := "https://comprar.gob.ar"

	tests := []struct {
		name string
		href string
		want string
	}{
		{
			name: "absolute url passes through",
			href: "https://comprar.gob.ar/PLIEGO/VistaPreviaPliegoCiudadano.aspx?qs=abc",
			want: "https://comprar.gob.ar/PLIEGO/VistaPreviaPliegoCiudadano.aspx?qs=abc",
		},
		{
			name: "window.open with absolute url",
			href: `javascript:window.open('https://comprar.gob.ar/PLIEGO/VistaPrevia.aspx?qs=abc','_blank')`,
			want: "https://comprar.gob.ar/PLIEGO/VistaPrevia.aspx?qs=abc",
		},
		{
			name: "window.open with rooted pliego path",
			href: `javascript:window.open('/PLIEGO/VistaPreviaPliegoCiudadano.aspx?qs=abc', 'popup')`,
			want: "https://comprar.gob.ar/PLIEGO/VistaPreviaPliegoCiudadano.aspx?qs=abc",
		},
		{
			name: "relative path with tilde prefix",
			href: "~/PLIEGO/VistaPrevia.aspx?qs=abc",
			want: "https://comprar.gob.ar/PLIEGO/VistaPrevia.aspx?qs=abc",
		},
		{
			name: "relative path",
			href: "/Compras/Detalle.aspx?qs=abc",
			want: "https://comprar.gob.ar/Compras/Detalle.aspx?qs=abc",
		},
		{
			name: "bare postback has no url",
			href: `javascript:__doPostBack('ctl00$CPH1$grid$ctl03$lnkNumeroProceso','')`,
			want: "",
		},
		{
			name: "empty href",
			href: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDetailURL(tt.href, base))
		})
	}
}
